// nicelog-sample writes one message per level to a log file, using a template with the logger
// name, timestamp, level and message.
package main

import (
	"fmt"
	"os"

	"github.com/mologie/nicelog"
	"github.com/mologie/nicelog/internal/flagcfg"
	"github.com/spf13/cobra"
)

type Config struct {
	LogFile string `usage:"log file name"`
	LogPath string `usage:"directory of the log file"`
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return flagcfg.RootCommand(flagcfg.Run(sample), cobra.Command{
		Use:   "nicelog-sample [--log-file <file>] [--log-path <dir>]",
		Short: "Write a sample log file",
	}, Config{
		LogFile: "test.log",
		LogPath: nicelog.DefaultLogPath,
	})
}

func sample(cfg Config, cmd *cobra.Command, args []string) error {
	format := nicelog.BuildFormat(nicelog.Name(), nicelog.LevelName(), nicelog.Timestamp())
	conf, err := nicelog.New("test",
		nicelog.WithLevel(nicelog.LevelDebug),
		nicelog.WithLogFile(cfg.LogFile),
		nicelog.WithLogPath(cfg.LogPath),
		nicelog.WithFormatter(format),
	)
	if err != nil {
		return err
	}
	log, err := conf.Logger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Close() }()

	log.Info("Info")
	log.Debug("Debug")
	log.Warn("Warning")
	log.Critical("Critical")
	log.Error("Error")

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", conf.FilePath())
	return err
}
