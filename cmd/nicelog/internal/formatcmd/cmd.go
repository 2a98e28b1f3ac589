package formatcmd

import (
	"fmt"
	"strings"

	"github.com/mologie/nicelog"
	"github.com/mologie/nicelog/internal/flagcfg"
	"github.com/spf13/cobra"
)

type Config struct {
	Canonical bool `usage:"list the canonical fields instead"`
}

func Create(parent *cobra.Command) *cobra.Command {
	return flagcfg.SubCommand(parent, flagcfg.Run(run), cobra.Command{
		Use:   "format [--canonical] [field...]",
		Short: "Print the template selecting exactly the given fields (default: message)",
		Args:  cobra.ArbitraryArgs,
	}, Config{})
}

func run(cfg Config, cmd *cobra.Command, args []string) error {
	if cfg.Canonical {
		names := make([]string, len(nicelog.CanonicalFields))
		for i, f := range nicelog.CanonicalFields {
			names[i] = string(f)
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.Join(names, " "))
		return err
	}
	var opts []nicelog.FieldOption
	if len(args) > 0 {
		opts = nicelog.SelectFields(args...)
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), nicelog.BuildFormat(opts...))
	return err
}
