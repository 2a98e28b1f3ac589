package flagcfg

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// environ may be replaced temporarily by tests.
var environ = os.Environ

// ErrUnboundEnvironment lists variables that carry the root command's prefix but belong to no flag
// of the executed command, typically misspelled names.
type ErrUnboundEnvironment struct {
	Names []string
}

func (e ErrUnboundEnvironment) Error() string {
	var sb strings.Builder
	sb.WriteString("unbound environment variables:\n")
	for _, name := range e.Names {
		sb.WriteString(fmt.Sprintf("  %s\n", name))
	}
	return sb.String()
}

// addEnvLaxFlag registers --env-lax on root and returns the check run before the executed command.
func addEnvLaxFlag(root *cobra.Command, prefix string) func(leaf *cobra.Command) error {
	lax := root.PersistentFlags().Bool("env-lax", false, "ignore environment variables that match no flag")
	return func(leaf *cobra.Command) error {
		if *lax {
			return nil
		}
		unbound := make(map[string]struct{})
		for _, env := range environ() {
			key, _, ok := strings.Cut(env, "=")
			if ok && strings.HasPrefix(key, prefix) {
				unbound[key] = struct{}{}
			}
		}
		prune := func(flag *pflag.Flag) {
			if names := flag.Annotations[annotationEnv]; len(names) > 0 {
				delete(unbound, names[0])
			}
		}
		leaf.LocalFlags().VisitAll(prune)
		leaf.VisitParents(func(cmd *cobra.Command) {
			cmd.LocalFlags().VisitAll(prune)
		})
		if len(unbound) > 0 {
			return ErrUnboundEnvironment{Names: slices.Sorted(maps.Keys(unbound))}
		}
		return nil
	}
}
