package nicelog

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	// DefaultLogPath is the directory log files are created in unless WithLogPath is given.
	DefaultLogPath = "logs"

	// DefaultFormatter prints the logger name, level and message.
	DefaultFormatter = "%(name)s - %(levelname)s - %(message)s"
)

// Config describes a logger: its identity, threshold, destination and output template. A Config
// is immutable once built by New; use Config.With to derive a modified copy.
type Config struct {
	name       string
	level      Level
	logFile    string
	logPath    string
	formatter  string
	mode       Mode
	timeLayout string
	console    io.Writer
}

type options struct {
	level      Level
	logFile    string
	logPath    string
	formatter  string
	mode       string
	timeLayout string
	console    io.Writer
}

type Option func(*options)

// WithLevel sets the severity threshold. Records below it are dropped before formatting.
func WithLevel(level Level) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithLogFile directs output to a file named name below the log path. An empty name selects
// console output.
func WithLogFile(name string) Option {
	return func(o *options) {
		o.logFile = name
	}
}

// WithLogPath sets the directory for the log file. It is created on acquisition when missing.
func WithLogPath(path string) Option {
	return func(o *options) {
		o.logPath = path
	}
}

// WithFormatter sets the output template. It is not checked until a record is formatted.
func WithFormatter(format string) Option {
	return func(o *options) {
		o.formatter = format
	}
}

// WithMode sets the file write mode, "a" to append or "w" to overwrite. Case is ignored; any other
// value makes New fail with a *ValidationError.
func WithMode(mode string) Option {
	return func(o *options) {
		o.mode = mode
	}
}

// WithTimeLayout sets the layout used for %(asctime)s, see ParseTimeLayout.
func WithTimeLayout(layout string) Option {
	return func(o *options) {
		o.timeLayout = layout
	}
}

// WithConsole sets the stream used when no log file is configured. Nil restores os.Stderr.
func WithConsole(w io.Writer) Option {
	return func(o *options) {
		if w == nil {
			w = os.Stderr
		}
		o.console = w
	}
}

// New validates and builds a Config for the logger identity name.
func New(name string, opts ...Option) (Config, error) {
	o := options{
		level:      DefaultLevel,
		logPath:    DefaultLogPath,
		formatter:  DefaultFormatter,
		mode:       string(DefaultMode),
		timeLayout: DefaultTimeLayout,
		console:    os.Stderr,
	}
	return build(name, o, opts...)
}

// With returns a copy of c with opts applied on top of its current values.
func (c Config) With(opts ...Option) (Config, error) {
	return build(c.name, options{
		level:      c.level,
		logFile:    c.logFile,
		logPath:    c.logPath,
		formatter:  c.formatter,
		mode:       string(c.mode),
		timeLayout: c.timeLayout,
		console:    c.console,
	}, opts...)
}

func build(name string, o options, opts ...Option) (Config, error) {
	for _, opt := range opts {
		opt(&o)
	}
	mode, err := ParseMode(o.mode)
	if err != nil {
		return Config{}, err
	}
	return Config{
		name:       name,
		level:      o.level,
		logFile:    o.logFile,
		logPath:    o.logPath,
		formatter:  o.formatter,
		mode:       mode,
		timeLayout: o.timeLayout,
		console:    o.console,
	}, nil
}

func (c Config) Name() string       { return c.name }
func (c Config) Level() Level       { return c.level }
func (c Config) LogFile() string    { return c.logFile }
func (c Config) LogPath() string    { return c.logPath }
func (c Config) Formatter() string  { return c.formatter }
func (c Config) Mode() Mode         { return c.mode }
func (c Config) TimeLayout() string { return c.timeLayout }

// FilePath returns the full path of the log file, or "" for console output.
func (c Config) FilePath() string {
	if c.logFile == "" {
		return ""
	}
	return filepath.Join(c.logPath, c.logFile)
}

// Logger acquires the logger for c from the Default registry.
func (c Config) Logger() (*Logger, error) {
	return Default().Acquire(c)
}

// handler builds the output handler for c. The log directory is created and the file opened here,
// never in New.
func (c Config) handler(level *slog.LevelVar) (*Handler, error) {
	if c.logFile == "" {
		return newHandler(c, level, c.console, nil), nil
	}
	if c.logPath != "" {
		if _, err := os.Stat(c.logPath); err != nil {
			if err := os.MkdirAll(c.logPath, 0o755); err != nil {
				return nil, &PermissionError{Path: c.logPath, Err: err}
			}
		}
	}
	path := c.FilePath()
	//nolint:gosec // G304: path comes from configuration
	f, err := os.OpenFile(path, c.mode.openFlags(), 0o644)
	if err != nil {
		return nil, &PermissionError{Path: path, Err: err}
	}
	return newHandler(c, level, f, f), nil
}
