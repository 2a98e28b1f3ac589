package flagcfg

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// lookupEnv may be replaced temporarily by tests.
var lookupEnv = os.LookupEnv

type FlagError struct {
	Flag *pflag.Flag
	Env  string
	Err  error
}

// ErrInvalidEnvironment lists environment variables whose value was rejected by their flag.
type ErrInvalidEnvironment struct {
	FlagErrors []FlagError
}

func (e ErrInvalidEnvironment) Error() string {
	var sb strings.Builder
	sb.WriteString("invalid environment variables:\n")
	for _, fe := range e.FlagErrors {
		sb.WriteString(fmt.Sprintf("  %s (--%s): %s\n", fe.Env, fe.Flag.Name, fe.Err))
	}
	return sb.String()
}

// applyEnv sets every flag defined by cmd that was not given on the command line from its bound
// environment variable.
func applyEnv(cmd *cobra.Command) error {
	var err ErrInvalidEnvironment
	cmd.LocalFlags().VisitAll(func(flag *pflag.Flag) {
		names := flag.Annotations[annotationEnv]
		if flag.Changed || len(names) == 0 {
			return
		}
		value, ok := lookupEnv(names[0])
		if !ok {
			return
		}
		if setErr := flag.Value.Set(value); setErr != nil {
			err.FlagErrors = append(err.FlagErrors, FlagError{Flag: flag, Env: names[0], Err: setErr})
			return
		}
		flag.Changed = true
	})
	if len(err.FlagErrors) > 0 {
		return err
	}
	return nil
}
