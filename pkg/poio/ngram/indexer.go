// Package ngram counts contiguous token sequences over a corpus.
//
// Tokens are interned to dense ids; a sliding window of Size ids moves over
// each document's token stream and every full window increments its entry in
// the table. Windows never cross document boundaries.
package ngram

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"sort"
	"time"

	"github.com/cognicore/poio/internal/logger"
	"github.com/cognicore/poio/pkg/poio/capitals"
	"github.com/cognicore/poio/pkg/poio/corpus"
	"github.com/cognicore/poio/pkg/poio/ingest"
	"github.com/cognicore/poio/pkg/poio/internalerr"
	"github.com/cognicore/poio/pkg/poio/metrics"
)

// Config controls an indexer.
type Config struct {
	// Size is the n-gram length; must be at least 1.
	Size int
	// Cutoff prunes entries with a count below it after ingestion. 0 keeps
	// everything.
	Cutoff int
	// CaseMap lowercases sentence-initial tokens before counting.
	CaseMap capitals.Map
	// Lowercase lowercases every token.
	Lowercase bool
	// SkipPreprocess disables Preprocess on document text.
	SkipPreprocess bool
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Size < 1 {
		return fmt.Errorf("%w: ngram size must be at least 1, got %d", internalerr.ErrInvalidConfig, c.Size)
	}
	if c.Cutoff < 0 {
		return fmt.Errorf("%w: cutoff must not be negative, got %d", internalerr.ErrInvalidConfig, c.Cutoff)
	}
	return nil
}

// Item is one n-gram with its count.
type Item struct {
	Tokens []string
	Count  uint64
}

// Indexer accumulates n-gram counts. Ingesting is not safe for concurrent
// use; once ingestion is done, Count may be called from many goroutines.
type Indexer struct {
	cfg      Config
	interner *Interner
	table    *Table
	adapter  *capitals.Adapter
	window   []ID
	docs     int64
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// New creates an indexer. An invalid configuration is rejected before
// anything is counted.
func New(cfg Config) (*Indexer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tokenizer := ingest.NewTokenizer()
	tokenizer.SetLowercase(cfg.Lowercase)
	pipeline := ingest.NewPipeline(nil, tokenizer)

	return &Indexer{
		cfg:      cfg,
		interner: NewInterner(),
		table:    NewTable(cfg.Size),
		adapter:  capitals.NewAdapter(pipeline, cfg.CaseMap),
		window:   make([]ID, 0, cfg.Size),
		logger:   logger.WithComponent("ngram"),
	}, nil
}

// SetMetrics attaches run metrics. nil detaches them.
func (ix *Indexer) SetMetrics(m *metrics.Metrics) {
	ix.metrics = m
}

// Config returns the indexer configuration.
func (ix *Indexer) Config() Config {
	return ix.cfg
}

// Interner exposes the token interner.
func (ix *Indexer) Interner() *Interner {
	return ix.interner
}

// Add counts the n-grams of one document's token stream.
func (ix *Indexer) Add(tokens []string) {
	n := ix.cfg.Size
	ix.window = ix.window[:0]
	windows := 0
	for _, tok := range tokens {
		ix.window = append(ix.window, ix.interner.ID(tok))
		if len(ix.window) == n {
			ix.table.Add(ix.window, 1)
			windows++
			copy(ix.window, ix.window[1:])
			ix.window = ix.window[:n-1]
		}
	}
	// A partial window at the end of the document is dropped.
	ix.window = ix.window[:0]
	ix.docs++
	ix.metrics.AddDocument(len(tokens), windows)
}

// AddDocument preprocesses and tokenizes text, then counts it.
func (ix *Indexer) AddDocument(text string) {
	if !ix.cfg.SkipPreprocess {
		text = Preprocess(text)
	}
	ix.Add(ix.adapter.Tokens(text))
}

// Ingest counts every document of src. A source error aborts ingestion and
// is returned as is; counts gathered so far remain in the indexer.
func (ix *Indexer) Ingest(ctx context.Context, src corpus.Source) error {
	start := time.Now()
	before := ix.docs
	err := src.Documents(ctx, func(doc string) error {
		ix.AddDocument(doc)
		return nil
	})
	if err != nil {
		return err
	}
	ix.metrics.ObserveStage("ingest", time.Since(start))
	ix.metrics.SetTableSize(ix.table.Len())
	ix.logger.Info("ingest complete",
		"documents", ix.docs-before,
		"ngrams", ix.table.Len(),
		"tokens", ix.interner.Len(),
		"duration", time.Since(start),
	)
	return nil
}

// Cutoff removes every n-gram whose count is below threshold and returns the
// number of removed entries. Pruned counts are lost; token ids are kept.
func (ix *Indexer) Cutoff(threshold int) int {
	if threshold <= 0 {
		return 0
	}
	removed := ix.table.Prune(uint64(threshold))
	ix.metrics.AddPruned(removed)
	ix.metrics.SetTableSize(ix.table.Len())
	ix.logger.Debug("cutoff applied", "threshold", threshold, "removed", removed, "remaining", ix.table.Len())
	return removed
}

// Items yields every n-gram and its count in first-seen order. The token
// slice is freshly allocated for each item.
func (ix *Indexer) Items() iter.Seq2[[]string, uint64] {
	return func(yield func([]string, uint64) bool) {
		ix.table.each(func(ids []ID, count uint64) bool {
			return yield(ix.tokens(ids), count)
		})
	}
}

// Sorted returns all n-grams ordered by descending count, then ascending
// token sequence.
func (ix *Indexer) Sorted() []Item {
	items := make([]Item, 0, ix.table.Len())
	for tokens, count := range ix.Items() {
		items = append(items, Item{Tokens: tokens, Count: count})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return lessTokens(items[i].Tokens, items[j].Tokens)
	})
	return items
}

// Count returns the count of the n-gram made of tokens.
func (ix *Indexer) Count(tokens ...string) uint64 {
	if len(tokens) != ix.cfg.Size {
		return 0
	}
	ids := make([]ID, len(tokens))
	for i, tok := range tokens {
		id, ok := ix.interner.Lookup(tok)
		if !ok {
			return 0
		}
		ids[i] = id
	}
	return ix.table.Count(ids)
}

// Len returns the number of distinct n-grams.
func (ix *Indexer) Len() int {
	return ix.table.Len()
}

// Total returns the sum of all n-gram counts.
func (ix *Indexer) Total() uint64 {
	return ix.table.Total()
}

// Documents returns the number of documents counted.
func (ix *Indexer) Documents() int64 {
	return ix.docs
}

// Merge adds the counts of other to ix. Tokens are re-interned by string, so
// other may have used a different interner.
func (ix *Indexer) Merge(other *Indexer) error {
	if other.cfg.Size != ix.cfg.Size {
		return fmt.Errorf("%w: cannot merge %d-grams into %d-grams", internalerr.ErrInvalidInput, other.cfg.Size, ix.cfg.Size)
	}
	ids := make([]ID, ix.cfg.Size)
	other.table.each(func(otherIDs []ID, count uint64) bool {
		for i, id := range otherIDs {
			tok, _ := other.interner.Token(id)
			ids[i] = ix.interner.ID(tok)
		}
		ix.table.Add(ids, count)
		return true
	})
	ix.docs += other.docs
	return nil
}

func (ix *Indexer) tokens(ids []ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i], _ = ix.interner.Token(id)
	}
	return out
}

func lessTokens(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// CorpusNgrams counts the n-grams of a whole corpus and applies the
// configured cutoff.
func CorpusNgrams(ctx context.Context, src corpus.Source, cfg Config) (*Indexer, error) {
	ix, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if err := ix.Ingest(ctx, src); err != nil {
		return nil, err
	}
	if cfg.Cutoff > 0 {
		ix.Cutoff(cfg.Cutoff)
	}
	return ix, nil
}
