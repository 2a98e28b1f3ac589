// nicelog configures a logger from flags, environment variables or a config file and exercises it
// from the command line.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mologie/nicelog"
	"github.com/mologie/nicelog/cmd/nicelog/internal/configcmd"
	"github.com/mologie/nicelog/cmd/nicelog/internal/emitcmd"
	"github.com/mologie/nicelog/cmd/nicelog/internal/formatcmd"
	"github.com/mologie/nicelog/cmd/nicelog/internal/logflags"
	"github.com/mologie/nicelog/internal/flagcfg"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := flagcfg.RootCommand(flagcfg.Hooks[logflags.Config]{
		PersistentPreRun:  setup,
		PersistentPostRun: teardown,
	}, cobra.Command{
		Use:   "nicelog [--name <name>] [--level <level>] [--log-file <file>] [--format <template> | --fields <a,b>] <command>",
		Short: "Configure a logger and write to it",
	}, logflags.Default(), flagcfg.WithPrintEnv(), flagcfg.WithStrictEnv())

	emitcmd.Create(cmd)
	formatcmd.Create(cmd)
	configcmd.Create(cmd)
	return cmd
}

func setup(cfg logflags.Config, cmd *cobra.Command, args []string) error {
	conf, err := cfg.Build(cmd)
	if err != nil {
		return fmt.Errorf("configure logger: %w", err)
	}
	log, err := conf.Logger()
	if err != nil {
		return fmt.Errorf("acquire logger: %w", err)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logflags.WithConfig(ctx, conf)
	cmd.SetContext(nicelog.NewContext(ctx, log))
	return nil
}

func teardown(cfg logflags.Config, cmd *cobra.Command, args []string) error {
	return nicelog.FromContext(cmd.Context()).Close()
}
