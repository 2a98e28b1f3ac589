package flagcfg

import (
	"strings"

	"github.com/spf13/cobra"
)

// Hook matches cobra.Command's RunE functions, plus the config bound to the command.
type Hook[T any] func(cfg T, cmd *cobra.Command, args []string) error

// Hooks provides cobra's run hooks with a bound config. Only the persistent hooks run for
// subcommands.
type Hooks[T any] struct {
	PersistentPreRun  Hook[T]
	PreRun            Hook[T]
	Run               Hook[T]
	PostRun           Hook[T]
	PersistentPostRun Hook[T]
}

func init() {
	// Every command on the path applies its own environment variables in its persistent pre-run.
	cobra.EnableTraverseRunHooks = true
}

// Setup returns Hooks with only PersistentPreRun set. It runs for subcommands too.
func Setup[T any](f Hook[T]) Hooks[T] {
	return Hooks[T]{PersistentPreRun: f}
}

// Run returns Hooks with only Run set.
func Run[T any](f Hook[T]) Hooks[T] {
	return Hooks[T]{Run: f}
}

// RootCommand binds cfg to a new root command. It additionally accepts --env-file and
// --env-overwrite to load dotenv files before environment variables are applied.
func RootCommand[T any](hooks Hooks[T], cmd cobra.Command, cfg T, opts ...Option) *cobra.Command {
	return SubCommand(nil, hooks, cmd, cfg, opts...)
}

// SubCommand binds cfg to a new command below parent. Flag values are resolved from the command
// line, then from environment variables named after the command path (e.g. NICELOG_EMIT_COUNT),
// then from the defaults in cfg.
func SubCommand[T any](parent *cobra.Command, hooks Hooks[T], cmd cobra.Command, cfg T, opts ...Option) *cobra.Command {
	if cmd.Use == "" {
		panic("use line must be set, and should include all non-global flags")
	}
	c := &cmd
	c.TraverseChildren = true
	c.DisableAutoGenTag = true
	c.DisableFlagsInUseLine = true
	if c.Args == nil {
		c.Args = cobra.NoArgs
	}
	if parent != nil {
		parent.AddCommand(c)
	}

	var names []string
	c.VisitParents(func(p *cobra.Command) {
		names = append([]string{p.Name()}, names...)
	})
	bindCfg := config{envPrefix: screamingSnake(strings.Join(append(names, c.Name()), "_")) + "_"}
	for _, opt := range opts {
		opt(&bindCfg)
	}

	conf := new(T)
	*conf = cfg
	Bind(c, conf, bindCfg.envPrefix)

	loadDotEnv := func() error { return nil }
	checkUnbound := func(*cobra.Command) error { return nil }
	if parent == nil {
		loadDotEnv = addDotEnvFlags(c)
		if bindCfg.strictEnv {
			checkUnbound = addEnvLaxFlag(c, bindCfg.envPrefix)
		}
	}
	setup := passCfg(conf, hooks.PersistentPreRun)
	c.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := loadDotEnv(); err != nil {
			return err
		}
		if err := applyEnv(c); err != nil {
			return err
		}
		if err := checkUnbound(cmd); err != nil {
			return err
		}
		if setup != nil {
			return setup(cmd, args)
		}
		return nil
	}
	c.PreRunE = passCfg(conf, hooks.PreRun)
	c.RunE = passCfg(conf, hooks.Run)
	c.PostRunE = passCfg(conf, hooks.PostRun)
	c.PersistentPostRunE = passCfg(conf, hooks.PersistentPostRun)

	if bindCfg.printEnv {
		c.AddCommand(newPrintEnvCmd(c))
	}
	return c
}

func passCfg[T any](cfg *T, f Hook[T]) func(cmd *cobra.Command, args []string) error {
	if f == nil {
		return nil
	}
	return func(cmd *cobra.Command, args []string) error {
		return f(*cfg, cmd, args)
	}
}
