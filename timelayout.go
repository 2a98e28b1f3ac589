package nicelog

import (
	"strings"
	"time"
)

// DefaultTimeLayout renders %(asctime)s as "2024-01-02 15:04:05,123".
const DefaultTimeLayout = "2006-01-02 15:04:05,000"

var timeLayouts = map[string]string{
	"default":     DefaultTimeLayout,
	"iso8601":     DefaultTimeLayout,
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"ansic":       time.ANSIC,
	"unixdate":    time.UnixDate,
	"rubydate":    time.RubyDate,
	"rfc822":      time.RFC822,
	"rfc822z":     time.RFC822Z,
	"rfc850":      time.RFC850,
	"kitchen":     time.Kitchen,
	"datetime":    time.DateTime,
	"stamp":       time.Stamp,
	"stampmilli":  time.StampMilli,
	"stampmicro":  time.StampMicro,
	"stampnano":   time.StampNano,
}

// ParseTimeLayout resolves a named layout such as "RFC3339" or "stamp-milli" (case, spaces and
// punctuation are ignored for names). Anything else is returned verbatim as a time.Format layout,
// and an empty layout selects DefaultTimeLayout.
func ParseTimeLayout(layout string) string {
	key := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, strings.ToLower(layout))
	if key == "" {
		return DefaultTimeLayout
	}
	if std, ok := timeLayouts[key]; ok {
		return std
	}
	return layout
}
