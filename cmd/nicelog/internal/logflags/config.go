package logflags

import (
	"context"
	"fmt"

	"github.com/mologie/nicelog"
	"github.com/spf13/cobra"
)

// Config holds the logger settings accepted by every nicelog command.
type Config struct {
	Name       string        `flag:"persistent" param:"name,n" usage:"logger name"`
	Level      nicelog.Level `flag:"persistent" param:"level,l" usage:"DEBUG, INFO, WARNING, ERROR or CRITICAL"`
	LogFile    string        `flag:"persistent" usage:"log file name, console output when empty"`
	LogPath    string        `flag:"persistent" usage:"directory of the log file, created when missing"`
	Format     string        `flag:"persistent" usage:"output template, e.g. \"%(levelname)s %(message)s\""`
	Fields     []string      `flag:"persistent" usage:"build the template from these fields instead of --format"`
	Mode       nicelog.Mode  `flag:"persistent" usage:"a to append to or w to overwrite the log file"`
	TimeLayout string        `flag:"persistent" usage:"layout of %(asctime)s, a Go layout or a name like RFC3339"`
	Stdout     bool          `flag:"persistent" usage:"write console output to stdout instead of stderr"`
	ConfigFile string        `flag:"persistent" param:"config,c" usage:"load logger settings from a yaml, json or toml file"`
}

// Default returns the flag defaults, matching nicelog.New.
func Default() Config {
	return Config{
		Name:       "nicelog",
		Level:      nicelog.DefaultLevel,
		LogPath:    nicelog.DefaultLogPath,
		Format:     nicelog.DefaultFormatter,
		Mode:       nicelog.DefaultMode,
		TimeLayout: nicelog.DefaultTimeLayout,
	}
}

// Build resolves the logger configuration for cmd. With --config, the entry for --name in the file
// is the base and only flags given explicitly (or via environment) override it.
func (c Config) Build(cmd *cobra.Command) (nicelog.Config, error) {
	base, err := c.base()
	if err != nil {
		return nicelog.Config{}, err
	}
	set := func(name string) bool {
		if c.ConfigFile == "" {
			return true
		}
		flag := cmd.Flags().Lookup(name)
		return flag != nil && flag.Changed
	}

	var opts []nicelog.Option
	if set("level") {
		opts = append(opts, nicelog.WithLevel(c.Level))
	}
	if set("log-file") {
		opts = append(opts, nicelog.WithLogFile(c.LogFile))
	}
	if set("log-path") {
		opts = append(opts, nicelog.WithLogPath(c.LogPath))
	}
	switch {
	case len(c.Fields) > 0 && set("fields"):
		opts = append(opts, nicelog.WithFormatter(nicelog.BuildFormat(nicelog.SelectFields(c.Fields...)...)))
	case set("format"):
		opts = append(opts, nicelog.WithFormatter(c.Format))
	}
	if set("mode") {
		opts = append(opts, nicelog.WithMode(string(c.Mode)))
	}
	if set("time-layout") {
		opts = append(opts, nicelog.WithTimeLayout(c.TimeLayout))
	}
	if c.Stdout {
		opts = append(opts, nicelog.WithConsole(cmd.OutOrStdout()))
	} else {
		opts = append(opts, nicelog.WithConsole(cmd.ErrOrStderr()))
	}
	return base.With(opts...)
}

func (c Config) base() (nicelog.Config, error) {
	if c.ConfigFile == "" {
		return nicelog.New(c.Name)
	}
	configs, err := nicelog.LoadFile(c.ConfigFile)
	if err != nil {
		return nicelog.Config{}, err
	}
	base, ok := configs[c.Name]
	if !ok {
		return nicelog.Config{}, fmt.Errorf("logger %q not found in %s", c.Name, c.ConfigFile)
	}
	return base, nil
}

type configContextKey struct{}

// WithConfig stores the resolved logger configuration for subcommands.
func WithConfig(ctx context.Context, cfg nicelog.Config) context.Context {
	return context.WithValue(ctx, configContextKey{}, cfg)
}

// FromContext returns the configuration stored by WithConfig.
func FromContext(ctx context.Context) (nicelog.Config, bool) {
	cfg, ok := ctx.Value(configContextKey{}).(nicelog.Config)
	return cfg, ok
}
