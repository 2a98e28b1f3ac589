package configcmd

import (
	"errors"

	"github.com/goccy/go-yaml"
	"github.com/mologie/nicelog"
	"github.com/mologie/nicelog/cmd/nicelog/internal/logflags"
	"github.com/mologie/nicelog/internal/flagcfg"
	"github.com/spf13/cobra"
)

type Config struct{}

func Create(parent *cobra.Command) *cobra.Command {
	return flagcfg.SubCommand(parent, flagcfg.Run(run), cobra.Command{
		Use:   "config",
		Short: "Print the effective logger configuration in config file format",
	}, Config{})
}

// entry mirrors the keys read by nicelog.LoadFile.
type entry struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file,omitempty"`
	Path       string `yaml:"path"`
	Format     string `yaml:"format"`
	Mode       string `yaml:"mode"`
	TimeLayout string `yaml:"time_layout"`
}

func run(_ Config, cmd *cobra.Command, _ []string) error {
	conf, ok := logflags.FromContext(cmd.Context())
	if !ok {
		return errors.New("no logger configuration in context")
	}
	out, err := Marshal(conf)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

// Marshal renders conf as a "loggers" document that nicelog.LoadFile reads back.
func Marshal(conf nicelog.Config) ([]byte, error) {
	level := conf.Level()
	doc := map[string]map[string]entry{
		"loggers": {
			conf.Name(): {
				Level:      level.Name(),
				File:       conf.LogFile(),
				Path:       conf.LogPath(),
				Format:     conf.Formatter(),
				Mode:       string(conf.Mode()),
				TimeLayout: conf.TimeLayout(),
			},
		},
	}
	return yaml.Marshal(doc)
}
