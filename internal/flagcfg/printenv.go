package flagcfg

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var bareEnvValue = regexp.MustCompile(`^[a-zA-Z0-9_./:-]*$`)

func newPrintEnvCmd(outer *cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "printenv",
		Short: "Print environment variables of this command with their current values or defaults",
		Args:  cobra.NoArgs,
	}
	cmd.DisableAutoGenTag = true
	cmd.DisableFlagsInUseLine = true

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		quote := func(s string) string {
			if bareEnvValue.MatchString(s) {
				return s
			}
			return strconv.Quote(s)
		}
		//goland:noinspection GoUnhandledErrorResult
		fmt.Fprintf(w, "# %s\n", outer.CommandPath())
		var printErr error
		visit := func(flag *pflag.Flag) {
			names := flag.Annotations[annotationEnv]
			if flag.Hidden || len(names) == 0 || printErr != nil {
				return
			}
			line := fmt.Sprintf("\n# %s (type: %s)\n", flag.Name, flag.Value.Type())
			if flag.Changed {
				line += fmt.Sprintf("%s=%s\n", names[0], quote(flag.Value.String()))
			} else {
				line += fmt.Sprintf("# %s=%s\n", names[0], quote(flag.DefValue))
			}
			_, printErr = fmt.Fprint(w, line)
		}
		outer.LocalFlags().VisitAll(visit)
		outer.InheritedFlags().VisitAll(visit)
		return printErr
	}
	return cmd
}
