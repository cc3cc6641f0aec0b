// Package capitals detects tokens that are capitalized only because they
// start a sentence, and rewrites them to lowercase before counting.
package capitals

import (
	"context"
	"regexp"
	"strings"

	"github.com/cognicore/poio/pkg/poio/corpus"
	"github.com/cognicore/poio/pkg/poio/ingest"
)

// capitalShape matches tokens that start with uppercase letters followed by
// at least one non-uppercase character. All-caps tokens and punctuation do
// not match.
var capitalShape = regexp.MustCompile(`^\p{Lu}+\P{Lu}`)

// Map maps sentence-initial capitalized tokens to their lowercase form.
type Map map[string]string

// Lookup returns the replacement for token, if any.
func (m Map) Lookup(token string) (string, bool) {
	lower, ok := m[token]
	return lower, ok
}

// Classifier collects sentence-initial candidates and running-text token
// frequencies. Both are needed for the whole corpus before any decision can
// be made, so the result is only available through Map.
type Classifier struct {
	candidates map[string]struct{}
	running    map[string]int64
	sentences  int64
}

// NewClassifier creates an empty classifier.
func NewClassifier() *Classifier {
	return &Classifier{
		candidates: make(map[string]struct{}),
		running:    make(map[string]int64),
	}
}

// HasCapitalShape reports whether token looks like a capitalized word.
func HasCapitalShape(token string) bool {
	return capitalShape.MatchString(token)
}

// Observe consumes the tokens of one sentence.
func (c *Classifier) Observe(sentence []string) {
	if len(sentence) == 0 {
		return
	}
	c.sentences++
	if HasCapitalShape(sentence[0]) {
		c.candidates[sentence[0]] = struct{}{}
	}
	for _, tok := range sentence[1:] {
		c.running[tok]++
	}
}

// Sentences returns the number of non-empty sentences observed.
func (c *Classifier) Sentences() int64 {
	return c.sentences
}

// Candidates returns the number of distinct sentence-initial candidates.
func (c *Classifier) Candidates() int {
	return len(c.candidates)
}

// RunningCount returns how often token occurred outside sentence-initial
// position.
func (c *Classifier) RunningCount(token string) int64 {
	return c.running[token]
}

// Map returns a fresh map of every candidate whose lowercase form is
// strictly more frequent in running text than the candidate itself.
func (c *Classifier) Map() Map {
	m := make(Map)
	for tok := range c.candidates {
		lower := strings.ToLower(tok)
		if c.running[tok] < c.running[lower] {
			m[tok] = lower
		}
	}
	return m
}

// Build runs a classifier over every sentence of src.
func Build(ctx context.Context, src corpus.Source, tok ingest.SentenceTokenizer) (Map, error) {
	c := NewClassifier()
	err := corpus.TokenizedSentences(ctx, src, tok, func(tokens []string) error {
		c.Observe(tokens)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.Map(), nil
}

// SentenceStartsLowerMap builds the map for a corpus with the default
// pipeline.
func SentenceStartsLowerMap(ctx context.Context, src corpus.Source) (Map, error) {
	return Build(ctx, src, ingest.DefaultPipeline())
}
