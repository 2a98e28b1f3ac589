package nicelog

import (
	"context"
)

type logContextKey struct{}

func NewContext(ctx context.Context, log *Logger) context.Context {
	return context.WithValue(ctx, logContextKey{}, log)
}

// FromContext returns the logger stored by NewContext. Without one it warns and falls back to the
// unconfigured "root" identity of the Default registry.
func FromContext(ctx context.Context) *Logger {
	log, ok := ctx.Value(logContextKey{}).(*Logger)
	if !ok {
		log = Default().Get("root")
		log.Warn("nicelog.FromContext: no logger in context")
	}
	return log
}
