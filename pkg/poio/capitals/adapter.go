package capitals

import "github.com/cognicore/poio/pkg/poio/ingest"

// Adapter wraps a sentence tokenizer and lowercases the first token of every
// sentence that appears in its map. A nil or empty map makes it a
// passthrough.
type Adapter struct {
	tokenizer ingest.SentenceTokenizer
	m         Map
}

// NewAdapter creates an adapter around tokenizer.
func NewAdapter(tokenizer ingest.SentenceTokenizer, m Map) *Adapter {
	return &Adapter{tokenizer: tokenizer, m: m}
}

// Normalize rewrites sentence[0] in place and returns sentence.
func (a *Adapter) Normalize(sentence []string) []string {
	if len(sentence) == 0 || len(a.m) == 0 {
		return sentence
	}
	if lower, ok := a.m[sentence[0]]; ok {
		sentence[0] = lower
	}
	return sentence
}

// TokenizedSentences implements ingest.SentenceTokenizer.
func (a *Adapter) TokenizedSentences(text string) [][]string {
	sentences := a.tokenizer.TokenizedSentences(text)
	for _, s := range sentences {
		a.Normalize(s)
	}
	return sentences
}

// Tokens returns the normalized tokens of text as one stream.
func (a *Adapter) Tokens(text string) []string {
	var tokens []string
	for _, s := range a.TokenizedSentences(text) {
		tokens = append(tokens, s...)
	}
	return tokens
}
