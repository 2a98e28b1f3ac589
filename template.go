package nicelog

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"
)

var errIncompleteFormat = errors.New("incomplete format")

var processStart = time.Now()

type segment struct {
	literal string
	key     string
	flags   string
	conv    byte
}

type template struct {
	src  string
	segs []segment
}

// compileTemplate parses %(key)[flags][width][.precision]conv placeholders, conv being one of s,
// d, i, f or r, and %% escapes. An empty source compiles as %(message)s.
func compileTemplate(src string) (*template, error) {
	t := &template{src: src}
	if src == "" {
		src = Placeholder(string(FieldMessage))
	}
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			t.segs = append(t.segs, segment{literal: lit.String()})
			lit.Reset()
		}
	}
	for i := 0; i < len(src); {
		c := src[i]
		if c != '%' {
			lit.WriteByte(c)
			i++
			continue
		}
		if i+1 >= len(src) {
			return nil, errIncompleteFormat
		}
		switch src[i+1] {
		case '%':
			lit.WriteByte('%')
			i += 2
			continue
		case '(':
		default:
			return nil, fmt.Errorf("unsupported format character %q at offset %d", src[i+1], i+1)
		}
		end := strings.IndexByte(src[i+2:], ')')
		if end < 0 {
			return nil, fmt.Errorf("unterminated placeholder at offset %d", i)
		}
		key := src[i+2 : i+2+end]
		if key == "" {
			return nil, fmt.Errorf("empty placeholder at offset %d", i)
		}
		j := i + 2 + end + 1
		flagStart := j
		for j < len(src) && strings.IndexByte("-+ #0", src[j]) >= 0 {
			j++
		}
		for j < len(src) && src[j] >= '0' && src[j] <= '9' {
			j++
		}
		if j < len(src) && src[j] == '.' {
			j++
			for j < len(src) && src[j] >= '0' && src[j] <= '9' {
				j++
			}
		}
		if j >= len(src) {
			return nil, errIncompleteFormat
		}
		conv := src[j]
		if conv == 'i' {
			conv = 'd'
		}
		if strings.IndexByte("sdfr", conv) < 0 {
			return nil, fmt.Errorf("unsupported format character %q at offset %d", src[j], j)
		}
		flush()
		t.segs = append(t.segs, segment{key: key, flags: src[flagStart:j], conv: conv})
		i = j + 1
	}
	flush()
	return t, nil
}

// record is the view of a log entry the template renders from. Both slog records and logrus
// entries are translated into it.
type record struct {
	name    string
	time    time.Time
	level   Level
	message string
	pc      uintptr
	attr    func(key string) (any, bool)
	frame   *runtime.Frame
}

func (r *record) source() runtime.Frame {
	if r.frame == nil {
		r.frame = &runtime.Frame{}
		if r.pc != 0 {
			*r.frame, _ = runtime.CallersFrames([]uintptr{r.pc}).Next()
		}
	}
	return *r.frame
}

func (r *record) value(key, timeLayout string) (any, error) {
	switch key {
	case "name":
		return r.name, nil
	case "asctime":
		return r.time.Format(timeLayout), nil
	case "created":
		return float64(r.time.UnixNano()) / 1e9, nil
	case "msecs":
		return r.time.Nanosecond() / int(time.Millisecond), nil
	case "relativeCreated":
		return r.time.Sub(processStart).Milliseconds(), nil
	case "levelname":
		return r.level.Name(), nil
	case "levelno":
		return r.level.Number(), nil
	case "message":
		return r.message, nil
	case "process":
		return os.Getpid(), nil
	case "lineno":
		return r.source().Line, nil
	case "funcName":
		if fn := r.source().Function; fn != "" {
			return shortFunction(fn), nil
		}
		return "(unknown function)", nil
	case "pathname":
		if file := r.source().File; file != "" {
			return file, nil
		}
		return "(unknown file)", nil
	case "filename":
		if file := r.source().File; file != "" {
			return filepath.Base(file), nil
		}
		return "(unknown file)", nil
	case "module":
		if file := r.source().File; file != "" {
			return strings.TrimSuffix(filepath.Base(file), ".go"), nil
		}
		return "(unknown file)", nil
	}
	if r.attr != nil {
		if v, ok := r.attr(key); ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("unknown placeholder %q", key)
}

// shortFunction strips the import path and package from a runtime function name, so that
// "github.com/a/b.(*T).Run" becomes "(*T).Run".
func shortFunction(fn string) string {
	if i := strings.LastIndexByte(fn, '/'); i >= 0 {
		fn = fn[i+1:]
	}
	if i := strings.IndexByte(fn, '.'); i >= 0 {
		fn = fn[i+1:]
	}
	return fn
}

func (t *template) render(buf *bytes.Buffer, r *record, timeLayout string) error {
	for _, seg := range t.segs {
		if seg.key == "" {
			buf.WriteString(seg.literal)
			continue
		}
		v, err := r.value(seg.key, timeLayout)
		if err != nil {
			return err
		}
		s, err := formatValue(seg.flags, seg.conv, v)
		if err != nil {
			return fmt.Errorf("%%(%s)%s%c: %w", seg.key, seg.flags, seg.conv, err)
		}
		buf.WriteString(s)
	}
	return nil
}

func formatValue(flags string, conv byte, v any) (string, error) {
	if sv, ok := v.(slog.Value); ok {
		v = sv.Resolve().Any()
	}
	switch conv {
	case 'd':
		n, ok := toInt(v)
		if !ok {
			return "", fmt.Errorf("a number is required, not %T", v)
		}
		return fmt.Sprintf("%"+flags+"d", n), nil
	case 'f':
		f, ok := toFloat(v)
		if !ok {
			return "", fmt.Errorf("a number is required, not %T", v)
		}
		return fmt.Sprintf("%"+flags+"f", f), nil
	case 'r':
		if s, ok := v.(string); ok {
			return fmt.Sprintf("%"+flags+"s", strconv.Quote(s)), nil
		}
		return fmt.Sprintf("%"+flags+"s", fmt.Sprintf("%#v", v)), nil
	default:
		return fmt.Sprintf("%"+flags+"s", fmt.Sprint(v)), nil
	}
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	case float32:
		return int64(n), true
	case float64:
		return int64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case time.Duration:
		return int64(n), true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	if i, ok := toInt(v); ok {
		return float64(i), true
	}
	return 0, false
}
