package ingest

import "strings"

// StripMarks drops every hyphen or apostrophe of text at which drop returns
// true. drop is called with the runes of the unmodified input and the index
// of the mark.
func StripMarks(text string, drop func(r []rune, i int) bool) string {
	if !strings.ContainsAny(text, "-'") {
		return text
	}
	runes := []rune(text)
	var b strings.Builder
	b.Grow(len(text))
	for i, r := range runes {
		if (r == '-' || r == '\'') && drop(runes, i) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
