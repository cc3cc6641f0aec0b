package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"time"

	_ "github.com/lib/pq"

	"github.com/cognicore/poio/pkg/poio/config"
	"github.com/cognicore/poio/pkg/poio/internalerr"
	"github.com/cognicore/poio/pkg/poio/store"
)

var dialect = store.Dialect{Name: "postgres", Placeholder: store.Dollar}

// Sink writes n-gram tables into PostgreSQL.
type Sink struct {
	db   *sql.DB
	opts store.Options
	ids  *store.IDGenerator
}

var _ store.Sink = (*Sink)(nil)

// New connects and pings the server.
func New(ctx context.Context, cfg config.PostgresConfig, opts store.Options) (*Sink, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: pinging postgres: %v", internalerr.ErrStoreUnavailable, err)
	}
	return NewWithDB(db, opts), nil
}

// NewWithDB wraps an open handle.
func NewWithDB(db *sql.DB, opts store.Options) *Sink {
	return &Sink{db: db, opts: opts, ids: store.NewIDGenerator()}
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
