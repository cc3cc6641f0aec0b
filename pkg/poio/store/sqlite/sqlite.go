package sqlite

import (
	"context"
	"database/sql"
	"iter"

	_ "modernc.org/sqlite"

	"github.com/cognicore/poio/pkg/poio/store"
)

var dialect = store.Dialect{Name: "sqlite", Placeholder: store.Question}

// Sink writes n-gram tables into a SQLite database
type Sink struct {
	db   *sql.DB
	opts store.Options
	ids  *store.IDGenerator
}

var _ store.Sink = (*Sink)(nil)

// Open opens a SQLite database with WAL mode enabled.
func Open(ctx context.Context, path string, opts store.Options) (*Sink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// WAL lets readers run while a table is being written
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	return &Sink{
		db:   db,
		opts: opts,
		ids:  store.NewIDGenerator(),
	}, nil
}

func (s *Sink) Close() error {
	return s.db.Close()
}

func (s *Sink) InsertNgrams(ctx context.Context, meta store.Meta, rows iter.Seq2[[]string, uint64]) (store.RunInfo, error) {
	return store.WriteNgrams(ctx, s.db, dialect, s.ids, s.opts, meta, rows)
}

// Count returns the stored count of an n-gram.
func (s *Sink) Count(ctx context.Context, language string, tokens ...string) (uint64, error) {
	return store.CountNgram(ctx, s.db, dialect, language, tokens...)
}

// Runs lists the recorded inserts.
func (s *Sink) Runs(ctx context.Context) ([]store.RunInfo, error) {
	return store.ListRuns(ctx, s.db)
}

// DB exposes the underlying handle for ad-hoc queries.
func (s *Sink) DB() *sql.DB {
	return s.db
}
