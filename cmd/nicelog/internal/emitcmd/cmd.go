package emitcmd

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mologie/nicelog"
	"github.com/mologie/nicelog/cmd/nicelog/internal/logflags"
	"github.com/mologie/nicelog/internal/flagcfg"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type Config struct {
	Repeat int  `param:"repeat,r" usage:"number of rounds through all levels"`
	Logrus bool `usage:"also emit through logrus to stderr, rendered with the same template"`
}

func Create(parent *cobra.Command) *cobra.Command {
	return flagcfg.SubCommand(parent, flagcfg.Run(run), cobra.Command{
		Use:   "emit [--repeat <n>] [--logrus] [message]",
		Short: "Log one message at each level from DEBUG to CRITICAL",
		Long: "Log one message at each level from DEBUG to CRITICAL. Every record carries a run_id\n" +
			"attribute, which templates can reference as %(run_id)s.",
		Args: cobra.MaximumNArgs(1),
	}, Config{
		Repeat: 1,
	})
}

func run(cfg Config, cmd *cobra.Command, args []string) error {
	if cfg.Repeat <= 0 {
		return fmt.Errorf("repeat must be >0, but got %d", cfg.Repeat)
	}
	runID := uuid.NewString()
	log := nicelog.FromContext(cmd.Context()).With(slog.String("run_id", runID))

	var lr *logrus.Logger
	if cfg.Logrus {
		conf, ok := logflags.FromContext(cmd.Context())
		if !ok {
			return fmt.Errorf("no logger configuration in context")
		}
		lr = logrus.New()
		lr.SetOutput(cmd.ErrOrStderr())
		lr.SetLevel(logrus.TraceLevel)
		lr.SetFormatter(conf.LogrusFormatter())
	}

	for i := 0; i < cfg.Repeat; i++ {
		for _, level := range []nicelog.Level{
			nicelog.LevelDebug,
			nicelog.LevelInfo,
			nicelog.LevelWarning,
			nicelog.LevelError,
			nicelog.LevelCritical,
		} {
			msg := level.Name()
			if len(args) > 0 {
				msg = args[0]
			}
			emit(log, level, msg)
			if lr != nil {
				emitLogrus(lr.WithField("run_id", runID), level, msg)
			}
		}
	}
	return nil
}

func emit(log *nicelog.Logger, level nicelog.Level, msg string) {
	switch level {
	case nicelog.LevelDebug:
		log.Debug(msg)
	case nicelog.LevelInfo:
		log.Info(msg)
	case nicelog.LevelWarning:
		log.Warn(msg)
	case nicelog.LevelError:
		log.Error(msg)
	default:
		log.Critical(msg)
	}
}

func emitLogrus(e *logrus.Entry, level nicelog.Level, msg string) {
	switch level {
	case nicelog.LevelDebug:
		e.Debug(msg)
	case nicelog.LevelInfo:
		e.Info(msg)
	case nicelog.LevelWarning:
		e.Warn(msg)
	case nicelog.LevelError:
		e.Error(msg)
	default:
		// Entry.Log at FatalLevel neither exits nor panics, unlike Entry.Fatal
		e.Log(logrus.FatalLevel, msg)
	}
}
