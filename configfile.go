package nicelog

import (
	"fmt"

	"github.com/spf13/viper"
)

// fileLogger is one entry below "loggers" in a configuration file.
type fileLogger struct {
	Level      string   `mapstructure:"level"`
	File       string   `mapstructure:"file"`
	Path       *string  `mapstructure:"path"`
	Format     string   `mapstructure:"format"`
	Fields     []string `mapstructure:"fields"`
	Mode       string   `mapstructure:"mode"`
	TimeLayout string   `mapstructure:"time_layout"`
}

// LoadFile reads logger configurations from a YAML, JSON or TOML file, keyed by logger name:
//
//	loggers:
//	  app:
//	    level: debug
//	    file: app.log
//	    path: logs
//	    fields: [asctime, levelname, message]
//	    mode: w
//
// "format" takes a template verbatim and wins over "fields", which is passed to SelectFields.
// Omitted keys keep the defaults of New. Logger names are read in lower case.
func LoadFile(path string) (map[string]Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return FromViper(v)
}

// FromViper builds configurations from the "loggers" key of v.
func FromViper(v *viper.Viper) (map[string]Config, error) {
	var raw map[string]fileLogger
	if err := v.UnmarshalKey("loggers", &raw); err != nil {
		return nil, fmt.Errorf("decode loggers: %w", err)
	}
	configs := make(map[string]Config, len(raw))
	for name, fl := range raw {
		cfg, err := fl.config(name)
		if err != nil {
			return nil, fmt.Errorf("logger %q: %w", name, err)
		}
		configs[name] = cfg
	}
	return configs, nil
}

func (fl fileLogger) config(name string) (Config, error) {
	var opts []Option
	if fl.Level != "" {
		level, err := ParseLevel(fl.Level)
		if err != nil {
			return Config{}, err
		}
		opts = append(opts, WithLevel(level))
	}
	if fl.File != "" {
		opts = append(opts, WithLogFile(fl.File))
	}
	if fl.Path != nil {
		opts = append(opts, WithLogPath(*fl.Path))
	}
	switch {
	case fl.Format != "":
		opts = append(opts, WithFormatter(fl.Format))
	case len(fl.Fields) > 0:
		opts = append(opts, WithFormatter(BuildFormat(SelectFields(fl.Fields...)...)))
	}
	if fl.Mode != "" {
		opts = append(opts, WithMode(fl.Mode))
	}
	if fl.TimeLayout != "" {
		opts = append(opts, WithTimeLayout(fl.TimeLayout))
	}
	return New(name, opts...)
}
