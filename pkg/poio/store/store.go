package store

import (
	"context"
	"crypto/rand"
	"fmt"
	"iter"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/poio/pkg/poio/internalerr"
)

// Sink is the interface for persisting finished n-gram tables
type Sink interface {
	Close() error

	// InsertNgrams writes every row of an n-gram table. Rows must have
	// exactly meta.Size tokens.
	InsertNgrams(ctx context.Context, meta Meta, rows iter.Seq2[[]string, uint64]) (RunInfo, error)
}

// Meta describes an n-gram table
type Meta struct {
	Language string
	Size     int
}

// Validate checks the metadata
func (m Meta) Validate() error {
	if m.Size < 1 {
		return fmt.Errorf("%w: ngram size must be at least 1, got %d", internalerr.ErrInvalidInput, m.Size)
	}
	if strings.TrimSpace(m.Language) == "" {
		return fmt.Errorf("%w: language is required", internalerr.ErrInvalidInput)
	}
	return nil
}

// Options controls how a SQL sink writes rows
type Options struct {
	// Append adds counts to existing rows. Without it, rows of the same
	// language and size are replaced.
	Append bool
	// CreateIndex builds a lookup index after inserting.
	CreateIndex bool
}

// RunInfo records one insert
type RunInfo struct {
	ID        string
	Language  string
	Size      int
	Rows      int
	CreatedAt time.Time
}

// IDGenerator issues monotonic ULIDs. It is safe for concurrent use.
type IDGenerator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewIDGenerator creates a generator seeded from crypto/rand.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// New returns a ULID for t.
func (g *IDGenerator) New(t time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), g.entropy).String()
}

// CheckRow verifies that a row matches meta.
func CheckRow(meta Meta, tokens []string) error {
	if len(tokens) != meta.Size {
		return fmt.Errorf("%w: row %q has %d tokens, want %d", internalerr.ErrInvalidInput, tokens, len(tokens), meta.Size)
	}
	return nil
}
