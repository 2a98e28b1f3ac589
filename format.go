package nicelog

import (
	"slices"
	"strings"
)

// Field is a placeholder key understood by the template renderer.
type Field string

const (
	FieldName         Field = "name"
	FieldTimestamp    Field = "asctime"
	FieldLevel        Field = "levelname"
	FieldMessage      Field = "message"
	FieldLineNumber   Field = "lineno"
	FieldFunctionName Field = "funcName"
)

// CanonicalFields lists the fields BuildFormat knows by name, in output order.
var CanonicalFields = []Field{
	FieldName,
	FieldTimestamp,
	FieldLevel,
	FieldMessage,
	FieldLineNumber,
	FieldFunctionName,
}

// Placeholder returns the template token for key, e.g. "%(name)s".
func Placeholder(key string) string {
	return "%(" + key + ")s"
}

type selection struct {
	canonical map[Field]bool
	extra     []Field
	included  map[Field]bool
}

type FieldOption func(*selection)

// WithField includes or excludes a field. Canonical fields keep their fixed position; other keys
// are appended after them in the order they are first given. Giving a key again only updates its
// flag.
func WithField(field Field, include bool) FieldOption {
	return func(s *selection) {
		if _, ok := s.canonical[field]; ok {
			s.canonical[field] = include
			return
		}
		if _, seen := s.included[field]; !seen {
			s.extra = append(s.extra, field)
		}
		s.included[field] = include
	}
}

func Name() FieldOption         { return WithField(FieldName, true) }
func Timestamp() FieldOption    { return WithField(FieldTimestamp, true) }
func LevelName() FieldOption    { return WithField(FieldLevel, true) }
func NoMessage() FieldOption    { return WithField(FieldMessage, false) }
func LineNumber() FieldOption   { return WithField(FieldLineNumber, true) }
func FunctionName() FieldOption { return WithField(FieldFunctionName, true) }

// Extra includes a caller-defined field, rendered from the record attribute of the same key.
func Extra(key string) FieldOption { return WithField(Field(key), true) }

// BuildFormat returns the space-separated placeholders of all included fields. Without options
// only the message is included. If nothing is included the result is empty.
func BuildFormat(opts ...FieldOption) string {
	s := selection{
		canonical: make(map[Field]bool, len(CanonicalFields)),
		included:  make(map[Field]bool),
	}
	for _, f := range CanonicalFields {
		s.canonical[f] = false
	}
	s.canonical[FieldMessage] = true
	for _, opt := range opts {
		opt(&s)
	}

	tokens := make([]string, 0, len(CanonicalFields)+len(s.extra))
	for _, f := range CanonicalFields {
		if s.canonical[f] {
			tokens = append(tokens, Placeholder(string(f)))
		}
	}
	for _, f := range s.extra {
		if s.included[f] {
			tokens = append(tokens, Placeholder(string(f)))
		}
	}
	return strings.Join(tokens, " ")
}

// SelectFields returns options that include exactly the given fields, e.g. from a comma-separated
// flag. The message is only included when listed.
func SelectFields(fields ...string) []FieldOption {
	opts := []FieldOption{NoMessage()}
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		opts = append(opts, WithField(Field(f), true))
	}
	return opts
}

// IsCanonical reports whether f is one of CanonicalFields.
func IsCanonical(f Field) bool {
	return slices.Contains(CanonicalFields, f)
}
