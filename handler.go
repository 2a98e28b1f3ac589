package nicelog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// reportError receives formatting and write failures; it may be replaced temporarily by tests.
var reportError = defaultReportError

func defaultReportError(err error) {
	_, _ = fmt.Fprintf(os.Stderr, "logging error: %s\n", err)
}

var _ slog.Handler = (*Handler)(nil)

// Handler renders records through a Config's template and writes one line per record. Derived
// handlers from WithAttrs and WithGroup share the template and the output.
type Handler struct {
	name       string
	level      slog.Leveler
	timeLayout string
	tmpl       *lazyTemplate
	out        *output
	attrs      map[string]slog.Value
	prefix     string
}

type lazyTemplate struct {
	src  string
	once sync.Once
	t    *template
	err  error
}

func (lt *lazyTemplate) get() (*template, error) {
	lt.once.Do(func() {
		lt.t, lt.err = compileTemplate(lt.src)
	})
	return lt.t, lt.err
}

type output struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	path   string
	closed bool
}

func (o *output) write(b []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return os.ErrClosed
	}
	_, err := o.w.Write(b)
	return err
}

func (o *output) close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return nil
	}
	o.closed = true
	if o.closer != nil {
		return o.closer.Close()
	}
	return nil
}

// NewHandler returns a Handler for cfg that writes to w with cfg's threshold, bypassing the
// registry. The caller owns w.
func NewHandler(cfg Config, w io.Writer) *Handler {
	return newHandler(cfg, cfg.level, w, nil)
}

func newHandler(cfg Config, level slog.Leveler, w io.Writer, closer io.Closer) *Handler {
	if w == nil {
		w = os.Stderr
	}
	out := &output{w: w, closer: closer}
	if closer != nil {
		out.path = cfg.FilePath()
	}
	return &Handler{
		name:       cfg.name,
		level:      level,
		timeLayout: ParseTimeLayout(cfg.timeLayout),
		tmpl:       &lazyTemplate{src: cfg.formatter},
		out:        out,
	}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)
	t, err := h.tmpl.get()
	if err == nil {
		rec := record{
			name:    h.name,
			time:    r.Time,
			level:   Level(r.Level),
			message: r.Message,
			pc:      r.PC,
			attr:    h.lookup(r),
		}
		err = t.render(buf, &rec, h.timeLayout)
	}
	if err != nil {
		ferr := &FormatError{Template: h.tmpl.src, Err: err}
		reportError(ferr)
		return ferr
	}
	buf.WriteByte('\n')
	if err := h.out.write(buf.Bytes()); err != nil {
		reportError(err)
		return err
	}
	return nil
}

// lookup resolves extra placeholders, preferring record attributes over logger attributes.
func (h *Handler) lookup(r slog.Record) func(string) (any, bool) {
	var recAttrs map[string]slog.Value
	return func(key string) (any, bool) {
		if recAttrs == nil {
			recAttrs = make(map[string]slog.Value, r.NumAttrs())
			r.Attrs(func(a slog.Attr) bool {
				flatten(recAttrs, h.prefix, a)
				return true
			})
		}
		if v, ok := recAttrs[key]; ok {
			return v, true
		}
		v, ok := h.attrs[key]
		return v, ok
	}
}

func flatten(dst map[string]slog.Value, prefix string, a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p += a.Key + "."
		}
		for _, ga := range v.Group() {
			flatten(dst, p, ga)
		}
		return
	}
	if a.Key == "" {
		return
	}
	dst[prefix+a.Key] = v
}

func (h *Handler) clone() *Handler {
	h2 := *h
	h2.attrs = make(map[string]slog.Value, len(h.attrs))
	for k, v := range h.attrs {
		h2.attrs[k] = v
	}
	return &h2
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	h2 := h.clone()
	for _, a := range attrs {
		flatten(h2.attrs, h2.prefix, a)
	}
	return h2
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := h.clone()
	h2.prefix += name + "."
	return h2
}

// Path returns the log file written by h, or "" for console output.
func (h *Handler) Path() string {
	return h.out.path
}

// Close closes the log file. Console streams are left open. Records handled after Close fail
// with os.ErrClosed.
func (h *Handler) Close() error {
	return h.out.close()
}
