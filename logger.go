package nicelog

import (
	"context"
	"log/slog"
	"runtime"
	"slices"
	"time"
)

// Logger is the handle of a registered logger identity. It embeds *slog.Logger for the DEBUG
// through ERROR methods and adds CRITICAL.
type Logger struct {
	*slog.Logger
	id *identity
}

// Name returns the identity the logger is registered under.
func (l *Logger) Name() string {
	return l.id.name
}

// Level returns the current threshold of the identity.
func (l *Logger) Level() Level {
	return Level(l.id.level.Level())
}

// Handlers returns the handlers currently attached to the identity.
func (l *Logger) Handlers() []*Handler {
	l.id.mu.RLock()
	defer l.id.mu.RUnlock()
	return slices.Clone(l.id.handlers)
}

// Close detaches and closes all handlers of the identity. Acquiring the logger again reattaches
// a handler.
func (l *Logger) Close() error {
	return l.id.detach()
}

// With returns a Logger that adds args as attributes to every record, see slog.Logger.With.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...), id: l.id}
}

// WithGroup returns a Logger that qualifies subsequent attributes with name.
func (l *Logger) WithGroup(name string) *Logger {
	return &Logger{Logger: l.Logger.WithGroup(name), id: l.id}
}

// Critical logs at LevelCritical.
func (l *Logger) Critical(msg string, args ...any) {
	l.log(context.Background(), LevelCritical, msg, args...)
}

// CriticalContext logs at LevelCritical with the given context.
func (l *Logger) CriticalContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, LevelCritical, msg, args...)
}

func (l *Logger) log(ctx context.Context, level Level, msg string, args ...any) {
	if !l.Enabled(ctx, slog.Level(level)) {
		return
	}
	// skip runtime.Callers, log and Critical/CriticalContext
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:])
	r := slog.NewRecord(time.Now(), slog.Level(level), msg, pcs[0])
	r.Add(args...)
	_ = l.Handler().Handle(ctx, r)
}
