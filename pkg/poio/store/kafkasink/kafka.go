// Package kafkasink publishes n-gram tables to a Kafka topic, one JSON
// message per row keyed by language.
package kafkasink

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/cognicore/poio/internal/logger"
	"github.com/cognicore/poio/pkg/poio/config"
	"github.com/cognicore/poio/pkg/poio/store"
)

// Row is the message payload for one n-gram.
type Row struct {
	RunID    string   `json:"run_id"`
	Language string   `json:"language"`
	Size     int      `json:"size"`
	Tokens   []string `json:"tokens"`
	Count    uint64   `json:"count"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Sink writes rows to Kafka in batches. Append and CreateIndex have no
// meaning for a topic; consumers decide how to fold runs together.
type Sink struct {
	writer    messageWriter
	batchSize int
	ids       *store.IDGenerator
	logger    *slog.Logger
}

var _ store.Sink = (*Sink)(nil)

// New creates a sink for the configured topic.
func New(cfg config.KafkaConfig) *Sink {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    cfg.BatchSize,
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  3,
		RequiredAcks: kafka.RequireAll,
	}
	return newSink(w, cfg.BatchSize, cfg.Topic)
}

func newSink(w messageWriter, batchSize int, topic string) *Sink {
	if batchSize < 1 {
		batchSize = 100
	}
	return &Sink{
		writer:    w,
		batchSize: batchSize,
		ids:       store.NewIDGenerator(),
		logger:    logger.WithComponent("kafka-sink").With("topic", topic),
	}
}

func (s *Sink) Close() error {
	return s.writer.Close()
}

func (s *Sink) InsertNgrams(ctx context.Context, meta store.Meta, rows iter.Seq2[[]string, uint64]) (store.RunInfo, error) {
	if err := meta.Validate(); err != nil {
		return store.RunInfo{}, err
	}

	now := time.Now().UTC()
	info := store.RunInfo{
		ID:        s.ids.New(now),
		Language:  meta.Language,
		Size:      meta.Size,
		CreatedAt: now,
	}

	batch := make([]kafka.Message, 0, s.batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.writer.WriteMessages(ctx, batch...); err != nil {
			return fmt.Errorf("publishing to kafka: %w", err)
		}
		s.logger.Debug("batch published", "messages", len(batch))
		batch = batch[:0]
		return nil
	}

	for tokens, count := range rows {
		if err := store.CheckRow(meta, tokens); err != nil {
			return info, err
		}
		value, err := json.Marshal(Row{
			RunID:    info.ID,
			Language: meta.Language,
			Size:     meta.Size,
			Tokens:   tokens,
			Count:    count,
		})
		if err != nil {
			return info, fmt.Errorf("marshaling row: %w", err)
		}
		batch = append(batch, kafka.Message{Key: []byte(meta.Language), Value: value})
		info.Rows++
		if len(batch) == s.batchSize {
			if err := flush(); err != nil {
				return info, err
			}
		}
	}
	if err := flush(); err != nil {
		return info, err
	}

	s.logger.Info("ngrams published", "run", info.ID, "language", meta.Language, "size", meta.Size, "rows", info.Rows)
	return info, nil
}
