package ngram

import (
	"strings"
	"unicode"

	"github.com/cognicore/poio/pkg/poio/ingest"
)

// Preprocess removes hyphens and apostrophes left at word boundaries by
// line-wrapped source text:
//
//	" -word"   → " word"
//	" \"'word" → " \"word"
//	"word- "   → "word "
//	"word'\" " → "word\" "
//
// The four rules run one after the other; each rule decides on the output of
// the previous one.
func Preprocess(text string) string {
	if !strings.ContainsAny(text, "-'") {
		return text
	}
	text = ingest.StripMarks(text, func(r []rune, i int) bool {
		return i >= 1 && unicode.IsSpace(r[i-1])
	})
	text = ingest.StripMarks(text, func(r []rune, i int) bool {
		return i >= 2 && r[i-1] == '"' && unicode.IsSpace(r[i-2])
	})
	text = ingest.StripMarks(text, func(r []rune, i int) bool {
		return i+1 < len(r) && unicode.IsSpace(r[i+1])
	})
	text = ingest.StripMarks(text, func(r []rune, i int) bool {
		return i+2 < len(r) && r[i+1] == '"' && unicode.IsSpace(r[i+2])
	})
	return text
}
