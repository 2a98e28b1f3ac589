package flagcfg

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// these may be replaced temporarily by tests
var (
	pkgDotEnvLoad     = godotenv.Load
	pkgDotEnvOverload = godotenv.Overload
)

// addDotEnvFlags registers --env-file and --env-overwrite on the root command and returns a
// function loading the named files into the process environment.
func addDotEnvFlags(root *cobra.Command) func() error {
	fs := root.PersistentFlags()
	files := fs.StringArray("env-file", nil, "load dotenv file (repeat for multiple files)")
	overwrite := fs.Bool("env-overwrite", false, "give precedence to dotenv environment variables")
	return func() error {
		if len(*files) == 0 {
			return nil
		}
		load := pkgDotEnvLoad
		if *overwrite {
			load = pkgDotEnvOverload
		}
		if err := load(*files...); err != nil {
			return fmt.Errorf("load dotenv: %w", err)
		}
		return nil
	}
}
