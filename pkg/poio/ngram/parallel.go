package ngram

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cognicore/poio/pkg/poio/corpus"
)

// IngestParallel counts src with workers private indexers and merges their
// tables into ix. The final counts equal those of Ingest; the first-seen
// order of n-grams and the token ids assigned may differ.
func (ix *Indexer) IngestParallel(ctx context.Context, src corpus.Source, workers int) error {
	if workers <= 1 {
		return ix.Ingest(ctx, src)
	}
	start := time.Now()

	partials := make([]*Indexer, workers)
	for i := range partials {
		p, err := New(ix.cfg)
		if err != nil {
			return err
		}
		p.SetMetrics(ix.metrics)
		partials[i] = p
	}

	g, gctx := errgroup.WithContext(ctx)
	docs := make(chan string, workers*4)

	g.Go(func() error {
		defer close(docs)
		return src.Documents(gctx, func(doc string) error {
			select {
			case docs <- doc:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	})
	for _, p := range partials {
		g.Go(func() error {
			for doc := range docs {
				p.AddDocument(doc)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, p := range partials {
		if err := ix.Merge(p); err != nil {
			return err
		}
	}
	ix.metrics.ObserveStage("ingest", time.Since(start))
	ix.metrics.SetTableSize(ix.table.Len())
	ix.logger.Info("parallel ingest complete",
		"workers", workers,
		"documents", ix.docs,
		"ngrams", ix.table.Len(),
		"duration", time.Since(start),
	)
	return nil
}
