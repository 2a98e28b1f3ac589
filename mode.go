package nicelog

import (
	"os"
	"strings"

	"github.com/spf13/pflag"
)

var _ pflag.Value = func() *Mode { return nil }()

// Mode is the write disposition of a log file.
type Mode string

const (
	ModeAppend    Mode = "a"
	ModeOverwrite Mode = "w"
)

// DefaultMode appends to existing log files.
const DefaultMode = ModeAppend

// ParseMode lower-cases s and accepts only "a" and "w".
func ParseMode(s string) (Mode, error) {
	mode := Mode(strings.ToLower(s))
	switch mode {
	case ModeAppend, ModeOverwrite:
		return mode, nil
	}
	return "", &ValidationError{Field: "mode", Value: s}
}

func (m *Mode) Set(s string) error {
	mode, err := ParseMode(s)
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

func (m *Mode) String() string {
	return string(*m)
}

func (m *Mode) Type() string {
	return "mode"
}

func (m Mode) openFlags() int {
	if m == ModeOverwrite {
		return os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	}
	return os.O_CREATE | os.O_WRONLY | os.O_APPEND
}
