package ingest

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Segmenter splits a document into sentences. Whitespace between two
// sentences is kept as the leading spacing of the second one, so joining the
// returned sentences reconstructs the input exactly.
type Segmenter struct{}

// NewSegmenter creates a sentence segmenter.
func NewSegmenter() *Segmenter {
	return &Segmenter{}
}

// Sentences returns the sentences of text in order. Text that is empty or
// only whitespace yields no sentences.
func (s *Segmenter) Sentences(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var sentences []string
	sentStart := 0

	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !isTerminal(r) {
			i += size
			continue
		}

		// Consume the whole terminal cluster ("?!", "...") and any closing
		// quotes or brackets that belong to the sentence.
		j := i + size
		for j < len(text) {
			nr, ns := utf8.DecodeRuneInString(text[j:])
			if !isTerminal(nr) {
				break
			}
			j += ns
		}
		for j < len(text) {
			nr, ns := utf8.DecodeRuneInString(text[j:])
			if !isCloser(nr) {
				break
			}
			j += ns
		}

		if followedBySentenceStart(text, j) {
			sentences = append(sentences, text[sentStart:j])
			sentStart = j
		}
		i = j
	}

	if sentStart < len(text) {
		rest := text[sentStart:]
		if strings.TrimSpace(rest) == "" && len(sentences) > 0 {
			sentences[len(sentences)-1] += rest
		} else {
			sentences = append(sentences, rest)
		}
	}

	return sentences
}

func isTerminal(r rune) bool {
	return r == '.' || r == '?' || r == '!' || r == '…'
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '”', '’', '»':
		return true
	}
	return false
}

// followedBySentenceStart reports whether pos is followed by whitespace and
// then a character that is not a lowercase letter.
func followedBySentenceStart(s string, pos int) bool {
	i := pos
	foundSpace := false
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if unicode.IsSpace(r) {
			foundSpace = true
			i += size
			continue
		}
		return foundSpace && !unicode.IsLower(r)
	}
	return false
}
