package main

import (
	"context"
	"fmt"

	"github.com/cognicore/poio/pkg/poio/config"
	"github.com/cognicore/poio/pkg/poio/internalerr"
	"github.com/cognicore/poio/pkg/poio/store"
	"github.com/cognicore/poio/pkg/poio/store/kafkasink"
	"github.com/cognicore/poio/pkg/poio/store/memstore"
	"github.com/cognicore/poio/pkg/poio/store/postgres"
	"github.com/cognicore/poio/pkg/poio/store/sqlite"
)

func openSink(ctx context.Context, cfg *config.Config) (store.Sink, error) {
	opts := store.Options{
		Append:      cfg.Sink.Append,
		CreateIndex: cfg.Sink.CreateIndex,
	}
	switch cfg.Sink.Type {
	case config.SinkSQLite:
		return sqlite.Open(ctx, cfg.SQLite.Path, opts)
	case config.SinkPostgres:
		return postgres.New(ctx, cfg.Postgres, opts)
	case config.SinkMemory:
		return memstore.New(opts), nil
	case config.SinkKafka:
		return kafkasink.New(cfg.Kafka), nil
	default:
		return nil, fmt.Errorf("%w: unknown sink %q", internalerr.ErrInvalidConfig, cfg.Sink.Type)
	}
}
