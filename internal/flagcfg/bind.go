package flagcfg

import (
	"encoding"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	// optPersistent registers the flag on the persistent flag set, so that it is accepted by
	// subcommands as well.
	optPersistent = "persistent"

	// optRequired marks a flag as required.
	optRequired = "required"
)

// annotationEnv holds the name of the environment variable bound to a flag.
const annotationEnv = "flagcfg_env"

type config struct {
	envPrefix string
	printEnv  bool
	strictEnv bool
}

type Option func(*config)

// WithEnvPrefix overrides the environment variable prefix, which defaults to the screaming snake
// case of the command path. The underscore separator is added automatically.
func WithEnvPrefix(prefix string) Option {
	if prefix == "" || strings.ToUpper(prefix) != prefix || strings.HasSuffix(prefix, "_") {
		panic(fmt.Sprintf("env prefix %q must be non-empty upper case without trailing underscore", prefix))
	}
	return func(cfg *config) {
		cfg.envPrefix = prefix + "_"
	}
}

// WithStrictEnv makes a root command fail when the environment holds variables with its prefix
// that no flag of the executed command is bound to. The added --env-lax flag disables the check.
func WithStrictEnv() Option {
	return func(cfg *config) {
		cfg.strictEnv = true
	}
}

// WithPrintEnv adds a "printenv" subcommand that prints the command's environment variables.
func WithPrintEnv() Option {
	return func(cfg *config) {
		cfg.printEnv = true
	}
}

// Bind registers a flag for every field of the struct pointed to by cfg. The value of a field is
// taken from its flag if given, then from its environment variable, then left as is.
//
// Struct tags:
//   - flag: comma-separated "persistent" and "required".
//   - param: "name,n" for --name and -n. Defaults to the kebab case of the field name.
//   - env: variable name, "-" for none. Defaults to prefix plus screaming snake case.
//   - usage: help text.
func Bind(cmd *cobra.Command, cfg any, envPrefix string) {
	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		panic("cfg must be a struct pointer")
	}
	bindStruct(cmd, v.Elem(), "", envPrefix, fieldOpts{})
}

func bindStruct(cmd *cobra.Command, s reflect.Value, paramPrefix, envPrefix string, parent fieldOpts) {
	t := s.Type()
	for i := 0; i < t.NumField(); i++ {
		if !t.Field(i).IsExported() {
			continue
		}
		tags := parseTags(paramPrefix, envPrefix, t.Field(i))
		opts := tags.opts().or(parent)
		value := s.Field(i)

		fs := cmd.Flags()
		if opts.persistent {
			fs = cmd.PersistentFlags()
		}

		switch p := value.Addr().Interface().(type) {
		case *bool:
			fs.BoolVarP(p, tags.name, tags.abbrev, *p, tags.usage)
		case *int:
			fs.IntVarP(p, tags.name, tags.abbrev, *p, tags.usage)
		case *string:
			fs.StringVarP(p, tags.name, tags.abbrev, *p, tags.usage)
		case *[]string:
			fs.StringSliceVarP(p, tags.name, tags.abbrev, *p, tags.usage)
		case *time.Duration:
			fs.DurationVarP(p, tags.name, tags.abbrev, *p, tags.usage)
		case pflag.Value:
			fs.VarP(p, tags.name, tags.abbrev, tags.usage)
		case encoding.TextUnmarshaler:
			enc, ok := p.(encoding.TextMarshaler)
			if !ok {
				panic(fmt.Sprintf("field %q implements encoding.TextUnmarshaler but not encoding.TextMarshaler", tags.name))
			}
			fs.TextVarP(p, tags.name, tags.abbrev, enc, tags.usage)
		default:
			if value.Kind() == reflect.Struct {
				next := ""
				if tags.hasEnv() {
					next = tags.env + "_"
				}
				bindStruct(cmd, value, tags.name+"-", next, opts)
				continue
			}
			panic(fmt.Sprintf("unsupported field type %T for %q", p, tags.name))
		}

		flag := fs.Lookup(tags.name)
		if opts.required {
			if err := cobra.MarkFlagRequired(fs, flag.Name); err != nil {
				panic(fmt.Sprintf("mark flag %q required: %s", tags.name, err))
			}
			spaceAppend(&flag.Usage, "(required)")
		}
		if tags.hasEnv() {
			if err := fs.SetAnnotation(flag.Name, annotationEnv, []string{tags.env}); err != nil {
				panic(fmt.Sprintf("annotate flag %q: %s", tags.name, err))
			}
			spaceAppend(&flag.Usage, "(env "+tags.env+")")
		}
	}
}

type fieldOpts struct {
	persistent bool
	required   bool
}

func (o fieldOpts) or(other fieldOpts) fieldOpts {
	return fieldOpts{
		persistent: o.persistent || other.persistent,
		required:   o.required || other.required,
	}
}

type fieldTags struct {
	flags  []string
	name   string
	abbrev string
	env    string
	usage  string
}

func parseTags(paramPrefix, envPrefix string, field reflect.StructField) (tags fieldTags) {
	tags.flags = strings.Split(field.Tag.Get("flag"), ",")
	tags.name, tags.abbrev, _ = strings.Cut(field.Tag.Get("param"), ",")
	tags.env = field.Tag.Get("env")
	tags.usage = field.Tag.Get("usage")

	if len(tags.name) == 1 && tags.abbrev == "" {
		tags.name, tags.abbrev = "", tags.name
	}
	if tags.name == "" {
		tags.name = slug(field.Name, '-')
	}
	tags.name = paramPrefix + tags.name
	if len(tags.abbrev) > 1 {
		panic(fmt.Sprintf("abbreviation %q for %q must be a single character", tags.abbrev, tags.name))
	}

	switch {
	case tags.env == "" && envPrefix == "":
		tags.env = "-"
	case tags.env == "":
		tags.env = envPrefix + screamingSnake(field.Name)
	case tags.env != "-" && tags.env != screamingSnake(tags.env):
		panic(fmt.Sprintf("env tag %q for %q must be SCREAMING_SNAKE_CASE", tags.env, tags.name))
	}
	return
}

func (ft fieldTags) opts() fieldOpts {
	return fieldOpts{
		persistent: slices.Contains(ft.flags, optPersistent),
		required:   slices.Contains(ft.flags, optRequired),
	}
}

func (ft fieldTags) hasEnv() bool {
	return ft.env != "-"
}

func spaceAppend(s *string, suffix string) {
	if len(*s) > 0 {
		*s += " "
	}
	*s += suffix
}
