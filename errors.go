package nicelog

import (
	"fmt"
)

// ValidationError reports a Config parameter that was rejected by New.
type ValidationError struct {
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %q (must be %q or %q)", e.Field, e.Value, ModeAppend, ModeOverwrite)
}

// PermissionError reports that the log destination could not be created or opened. Path is the
// directory or file that was attempted, Err the underlying OS error.
type PermissionError struct {
	Path string
	Err  error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("failed to create log file at %s: %s", e.Path, e.Err)
}

func (e *PermissionError) Unwrap() error {
	return e.Err
}

// FormatError is returned from Handler.Handle when the template cannot be rendered.
type FormatError struct {
	Template string
	Err      error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format %q: %s", e.Template, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
