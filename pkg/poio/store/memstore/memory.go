package memstore

import (
	"context"
	"iter"
	"strings"
	"sync"
	"time"

	"github.com/cognicore/poio/pkg/poio/store"
)

// Store is an in-memory implementation of store.Sink for tests and dry runs.
type Store struct {
	mu     sync.RWMutex
	opts   store.Options
	ids    *store.IDGenerator
	tables map[tableKey]map[string]uint64
	runs   []store.RunInfo
}

type tableKey struct {
	language string
	size     int
}

var _ store.Sink = (*Store)(nil)

// New creates an empty store.
func New(opts store.Options) *Store {
	return &Store{
		opts:   opts,
		ids:    store.NewIDGenerator(),
		tables: make(map[tableKey]map[string]uint64),
	}
}

// Close implements store.Sink.
func (s *Store) Close() error { return nil }

// InsertNgrams implements store.Sink. Rows are staged first so a bad row
// leaves the store untouched.
func (s *Store) InsertNgrams(ctx context.Context, meta store.Meta, rows iter.Seq2[[]string, uint64]) (store.RunInfo, error) {
	if err := meta.Validate(); err != nil {
		return store.RunInfo{}, err
	}

	staged := make(map[string]uint64)
	n := 0
	for tokens, count := range rows {
		if err := ctx.Err(); err != nil {
			return store.RunInfo{}, err
		}
		if err := store.CheckRow(meta, tokens); err != nil {
			return store.RunInfo{}, err
		}
		staged[joinKey(tokens)] += count
		n++
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := tableKey{meta.Language, meta.Size}
	table := s.tables[key]
	if table == nil || !s.opts.Append {
		table = make(map[string]uint64, len(staged))
		s.tables[key] = table
	}
	for k, c := range staged {
		if s.opts.Append {
			table[k] += c
		} else {
			table[k] = c
		}
	}

	now := time.Now().UTC()
	info := store.RunInfo{
		ID:        s.ids.New(now),
		Language:  meta.Language,
		Size:      meta.Size,
		Rows:      n,
		CreatedAt: now,
	}
	s.runs = append(s.runs, info)
	return info, nil
}

// Count returns the stored count of an n-gram.
func (s *Store) Count(language string, tokens ...string) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tables[tableKey{language, len(tokens)}][joinKey(tokens)]
}

// Len returns the number of rows stored for a language and size.
func (s *Store) Len(language string, size int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tables[tableKey{language, size}])
}

// Runs returns the recorded inserts, oldest first.
func (s *Store) Runs() []store.RunInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]store.RunInfo, len(s.runs))
	copy(out, s.runs)
	return out
}

func joinKey(tokens []string) string {
	return strings.Join(tokens, "\x1f")
}
