package ingest

import (
	"strings"
	"unicode"
)

// DefaultSeparators are the characters that end a token without being part
// of one. Hyphens and apostrophes are deliberately absent so that "poio-lib"
// and "We'll" stay single tokens.
const DefaultSeparators = "~!@#$%^&*()_+=\\|]}[{\";:/?.>,<†„“”«»।…"

// Tokenizer splits text into tokens. A token is a maximal run of characters
// that are neither whitespace nor separators.
type Tokenizer struct {
	separators map[rune]struct{}
	lowercase  bool
}

// NewTokenizer creates a tokenizer with DefaultSeparators.
func NewTokenizer() *Tokenizer {
	return NewTokenizerWithSeparators(DefaultSeparators)
}

// NewTokenizerWithSeparators creates a tokenizer with a custom separator set.
func NewTokenizerWithSeparators(separators string) *Tokenizer {
	seps := make(map[rune]struct{}, len(separators))
	for _, r := range separators {
		seps[r] = struct{}{}
	}
	return &Tokenizer{separators: seps}
}

// SetLowercase makes Tokenize lowercase every token it emits.
func (t *Tokenizer) SetLowercase(lowercase bool) {
	t.lowercase = lowercase
}

// Lowercase reports whether tokens are lowercased.
func (t *Tokenizer) Lowercase() bool {
	return t.lowercase
}

// Tokenize returns the tokens of text in reading order.
func (t *Tokenizer) Tokenize(text string) []string {
	var tokens []string
	start := -1

	for i, r := range text {
		if t.isBoundary(r) {
			if start >= 0 {
				tokens = append(tokens, t.emit(text[start:i]))
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}

	if start >= 0 {
		tokens = append(tokens, t.emit(text[start:]))
	}

	return tokens
}

func (t *Tokenizer) emit(token string) string {
	if t.lowercase {
		return strings.ToLower(token)
	}
	return token
}

func (t *Tokenizer) isBoundary(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	_, ok := t.separators[r]
	return ok
}
