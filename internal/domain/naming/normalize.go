package naming

import (
	"regexp"
	"strings"
	"unicode"
)

// A race annotation is only dropped when it ends a name. The character after
// it is captured and put back so separators survive.
var annotationPattern = regexp.MustCompile(`(?i) \([PTZ]\)([ _,.]|$)|_game_\d+`)

var entityReplacer = strings.NewReplacer("&lt;", "[", "&gt;", "]")

// Normalize cleans a path or path segment before name matching and failure logging.
func Normalize(text string) string {
	text = entityReplacer.Replace(text)
	text = strings.TrimRight(text, "?")
	text = annotationPattern.ReplaceAllString(text, "${1}")
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, text)
}
