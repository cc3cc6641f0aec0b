package ingest

// SentenceTokenizer turns document text into tokenized sentences.
type SentenceTokenizer interface {
	TokenizedSentences(text string) [][]string
}

// Pipeline orchestrates the text flow:
// document → sentences → tokens
type Pipeline struct {
	segmenter *Segmenter
	tokenizer *Tokenizer
}

// NewPipeline creates a pipeline with the given components. Nil components
// are replaced by their defaults.
func NewPipeline(segmenter *Segmenter, tokenizer *Tokenizer) *Pipeline {
	if segmenter == nil {
		segmenter = NewSegmenter()
	}
	if tokenizer == nil {
		tokenizer = NewTokenizer()
	}
	return &Pipeline{
		segmenter: segmenter,
		tokenizer: tokenizer,
	}
}

// DefaultPipeline is NewPipeline(nil, nil).
func DefaultPipeline() *Pipeline {
	return NewPipeline(nil, nil)
}

// Tokenizer returns the pipeline's tokenizer.
func (p *Pipeline) Tokenizer() *Tokenizer {
	return p.tokenizer
}

// Sentences returns the sentences of text with their original spacing.
func (p *Pipeline) Sentences(text string) []string {
	return p.segmenter.Sentences(text)
}

// TokenizedSentences returns the tokens of every sentence of text.
// Sentences without any token are dropped.
func (p *Pipeline) TokenizedSentences(text string) [][]string {
	sentences := p.segmenter.Sentences(text)
	out := make([][]string, 0, len(sentences))
	for _, sentence := range sentences {
		tokens := p.tokenizer.Tokenize(sentence)
		if len(tokens) == 0 {
			continue
		}
		out = append(out, tokens)
	}
	return out
}

// Tokens returns the tokens of text without sentence structure.
func (p *Pipeline) Tokens(text string) []string {
	return p.tokenizer.Tokenize(text)
}
