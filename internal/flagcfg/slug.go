package flagcfg

import (
	"strings"
	"unicode"
)

// slug converts a Go identifier to lower case words joined by sep, keeping acronyms together:
// "LogFile" becomes "log-file", "CAPath" becomes "ca-path".
func slug(in string, sep rune) string {
	var s strings.Builder
	s.Grow(len(in) + len(in)/4)
	runes := []rune(in)
	afterPunct := false
	for i, r := range runes {
		switch {
		case !unicode.IsPrint(r) || unicode.IsPunct(r) || unicode.IsSpace(r):
			afterPunct = true
			continue
		case unicode.IsUpper(r):
			prevLower := i > 0 && !unicode.IsUpper(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if s.Len() > 0 && (afterPunct || prevLower || (i > 0 && nextLower)) {
				s.WriteRune(sep)
			}
			s.WriteRune(unicode.ToLower(r))
		default:
			if s.Len() > 0 && afterPunct {
				s.WriteRune(sep)
			}
			s.WriteRune(r)
		}
		afterPunct = false
	}
	return s.String()
}

func screamingSnake(in string) string {
	return strings.ToUpper(slug(in, '_'))
}
