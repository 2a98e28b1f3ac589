package nicelog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"slices"
	"sync"
)

// lastResort handles records of loggers that have no handler attached: WARNING and above are
// written to stderr as bare messages. It may be replaced temporarily by tests.
var lastResort = newHandler(Config{formatter: Placeholder(string(FieldMessage))}, LevelWarning, os.Stderr, nil)

// Registry maps logger names to logger identities. Acquiring a logger for a name replaces the
// handler of that identity; every *Logger handed out for the name observes the change.
type Registry struct {
	mu  sync.Mutex
	ids map[string]*identity
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry used by Config.Logger.
func Default() *Registry {
	return defaultRegistry
}

func NewRegistry() *Registry {
	return &Registry{ids: make(map[string]*identity)}
}

type identity struct {
	name     string
	level    slog.LevelVar
	mu       sync.RWMutex
	handlers []*Handler
	logger   *Logger
}

func (r *Registry) identity(name string) *identity {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.ids[name]; ok {
		return id
	}
	id := &identity{name: name}
	id.logger = &Logger{Logger: slog.New(&dispatcher{id: id}), id: id}
	r.ids[name] = id
	return id
}

// Get returns the logger registered under name, creating an identity without handlers if there
// is none yet.
func (r *Registry) Get(name string) *Logger {
	return r.identity(name).logger
}

// Acquire configures the identity cfg.Name() and returns its logger. The destination is opened
// before anything is detached: on error the identity keeps its previous threshold and handler.
// On success the previous handlers are closed and replaced by exactly one new handler.
func (r *Registry) Acquire(cfg Config) (*Logger, error) {
	id := r.identity(cfg.name)

	id.mu.Lock()
	defer id.mu.Unlock()

	h, err := cfg.handler(&id.level)
	if err != nil {
		return nil, err
	}
	id.level.Set(slog.Level(cfg.level))
	replaced := id.handlers
	id.handlers = []*Handler{h}
	if err := closeAll(replaced); err != nil {
		reportError(fmt.Errorf("close replaced handler of %q: %w", cfg.name, err))
	}
	return id.logger, nil
}

// Names returns the registered logger names in sorted order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Sorted(maps.Keys(r.ids))
}

// Reset closes the handlers of all identities and empties the registry. Loggers obtained before
// Reset keep working but have no handler left.
func (r *Registry) Reset() error {
	r.mu.Lock()
	ids := r.ids
	r.ids = make(map[string]*identity)
	r.mu.Unlock()

	var errs []error
	for _, id := range ids {
		errs = append(errs, id.detach())
	}
	return errors.Join(errs...)
}

func (id *identity) detach() error {
	id.mu.Lock()
	defer id.mu.Unlock()
	replaced := id.handlers
	id.handlers = nil
	return closeAll(replaced)
}

func closeAll(handlers []*Handler) error {
	var errs []error
	for _, h := range handlers {
		if err := h.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// dispatcher is the slog.Handler behind an identity's logger. It forwards to whatever handlers
// are attached at the time of the call, replaying WithAttrs/WithGroup on them.
type dispatcher struct {
	id  *identity
	ops []func(slog.Handler) slog.Handler
}

func (d *dispatcher) Enabled(_ context.Context, level slog.Level) bool {
	if level < d.id.level.Level() {
		return false
	}
	d.id.mu.RLock()
	defer d.id.mu.RUnlock()
	return len(d.id.handlers) > 0 || level >= lastResort.level.Level()
}

func (d *dispatcher) Handle(ctx context.Context, r slog.Record) error {
	d.id.mu.RLock()
	defer d.id.mu.RUnlock()

	if len(d.id.handlers) == 0 {
		if r.Level < lastResort.level.Level() {
			return nil
		}
		return d.wrap(lastResort).Handle(ctx, r)
	}
	var errs []error
	for _, h := range d.id.handlers {
		if err := d.wrap(h).Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (d *dispatcher) wrap(h *Handler) slog.Handler {
	var sh slog.Handler = h
	for _, op := range d.ops {
		sh = op(sh)
	}
	return sh
}

func (d *dispatcher) with(op func(slog.Handler) slog.Handler) *dispatcher {
	return &dispatcher{id: d.id, ops: append(d.ops[:len(d.ops):len(d.ops)], op)}
}

func (d *dispatcher) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return d
	}
	return d.with(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (d *dispatcher) WithGroup(name string) slog.Handler {
	if name == "" {
		return d
	}
	return d.with(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}
