package nicelog

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

var _ pflag.Value = func() *Level { return nil }()

// Level is a severity threshold. Its values are slog levels, so a Level converts to slog.Level
// without translation.
type Level slog.Level

const (
	LevelDebug    = Level(slog.LevelDebug)
	LevelInfo     = Level(slog.LevelInfo)
	LevelWarning  = Level(slog.LevelWarn)
	LevelError    = Level(slog.LevelError)
	LevelCritical = Level(12)
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = LevelInfo

var LevelNames = map[Level]string{
	LevelDebug:    "DEBUG",
	LevelInfo:     "INFO",
	LevelWarning:  "WARNING",
	LevelError:    "ERROR",
	LevelCritical: "CRITICAL",
}

var NameLevels = func() map[string]Level {
	m := make(map[string]Level, len(LevelNames)+2)
	for l, n := range LevelNames {
		m[n] = l
	}
	if len(LevelNames) != len(m) {
		panic("duplicate level value or name")
	}
	m["WARN"] = LevelWarning
	m["FATAL"] = LevelCritical
	return m
}()

// ParseLevel accepts a level name (case-insensitive, WARN and FATAL as aliases), a conventional
// level number (10, 20, 30, 40, 50), or slog's "NAME+N" offset syntax.
func ParseLevel(s string) (Level, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if level, ok := NameLevels[name]; ok {
		return level, nil
	}
	if n, err := strconv.Atoi(name); err == nil {
		if n%10 == 0 && n >= 10 && n <= 50 {
			return Level((n/10 - 2) * 4), nil
		}
		return 0, fmt.Errorf("invalid level number %d", n)
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return 0, err
	}
	return Level(l), nil
}

func (l *Level) Set(s string) error {
	level, err := ParseLevel(s)
	if err != nil {
		return err
	}
	*l = level
	return nil
}

func (l *Level) String() string {
	return l.Name()
}

func (l *Level) Type() string {
	return "level"
}

// Name returns the upper-case name used by %(levelname)s.
func (l Level) Name() string {
	if name, ok := LevelNames[l]; ok {
		return name
	}
	return slog.Level(l).String()
}

// Number returns the conventional numeric severity used by %(levelno)s: 10 for DEBUG through 50
// for CRITICAL, with slog offsets scaled in between.
func (l Level) Number() int {
	return 20 + int(l)*10/4
}

func (l Level) Level() slog.Level {
	return slog.Level(l)
}

func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.Name()), nil
}

func (l *Level) UnmarshalText(b []byte) error {
	return l.Set(string(b))
}
