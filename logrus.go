package nicelog

import (
	"bytes"

	"github.com/sirupsen/logrus"
)

var _ logrus.Formatter = (*LogrusFormatter)(nil)

// LogrusFormatter renders logrus entries with a Config's template, so components logging through
// logrus produce the same lines as the Config's slog handler. Extra placeholders are read from
// entry.Data. Threshold and destination remain logrus' concern.
type LogrusFormatter struct {
	name       string
	timeLayout string
	tmpl       *lazyTemplate
}

// LogrusFormatter returns a logrus.Formatter for c's template.
func (c Config) LogrusFormatter() *LogrusFormatter {
	return &LogrusFormatter{
		name:       c.name,
		timeLayout: ParseTimeLayout(c.timeLayout),
		tmpl:       &lazyTemplate{src: c.formatter},
	}
}

func (f *LogrusFormatter) Format(e *logrus.Entry) ([]byte, error) {
	t, err := f.tmpl.get()
	if err != nil {
		return nil, &FormatError{Template: f.tmpl.src, Err: err}
	}
	rec := record{
		name:    f.name,
		time:    e.Time,
		level:   logrusLevel(e.Level),
		message: e.Message,
		attr: func(key string) (any, bool) {
			v, ok := e.Data[key]
			return v, ok
		},
	}
	if e.HasCaller() {
		frame := *e.Caller
		rec.frame = &frame
	}
	buf := e.Buffer
	if buf == nil {
		buf = new(bytes.Buffer)
	}
	if err := t.render(buf, &rec, f.timeLayout); err != nil {
		return nil, &FormatError{Template: f.tmpl.src, Err: err}
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func logrusLevel(l logrus.Level) Level {
	switch l {
	case logrus.PanicLevel, logrus.FatalLevel:
		return LevelCritical
	case logrus.ErrorLevel:
		return LevelError
	case logrus.WarnLevel:
		return LevelWarning
	case logrus.InfoLevel:
		return LevelInfo
	default:
		return LevelDebug
	}
}
