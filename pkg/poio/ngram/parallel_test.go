package ngram

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/cognicore/poio/pkg/poio/corpus"
)

func sampleCorpus() corpus.Strings {
	var docs corpus.Strings
	for i := 0; i < 200; i++ {
		docs = append(docs, fmt.Sprintf("Der Linksdenker ist müde. Satz %d bleibt zuhause. Der Hund %d bellt.", i%7, i%3))
	}
	return docs
}

func TestIngestParallelMatchesSequential(t *testing.T) {
	src := sampleCorpus()
	for _, n := range []int{1, 2, 3} {
		seq := mustIndexer(t, Config{Size: n})
		if err := seq.Ingest(context.Background(), src); err != nil {
			t.Fatalf("Ingest: %v", err)
		}

		par := mustIndexer(t, Config{Size: n})
		if err := par.IngestParallel(context.Background(), src, 4); err != nil {
			t.Fatalf("IngestParallel: %v", err)
		}

		if !reflect.DeepEqual(seq.Sorted(), par.Sorted()) {
			t.Errorf("n=%d: parallel counts differ from sequential counts", n)
		}
		if par.Documents() != int64(len(src)) {
			t.Errorf("n=%d: Documents = %d, want %d", n, par.Documents(), len(src))
		}
	}
}

func TestIngestParallelSingleWorker(t *testing.T) {
	ix := mustIndexer(t, Config{Size: 2})
	if err := ix.IngestParallel(context.Background(), corpus.Strings{linksdenker}, 1); err != nil {
		t.Fatalf("IngestParallel: %v", err)
	}
	if ix.Count("Der", "Linksdenker") != 2 {
		t.Errorf("Der Linksdenker = %d, want 2", ix.Count("Der", "Linksdenker"))
	}
}

func TestIngestParallelSourceError(t *testing.T) {
	boom := errors.New("boom")
	ix := mustIndexer(t, Config{Size: 1})
	if err := ix.IngestParallel(context.Background(), errSource{err: boom}, 3); !errors.Is(err, boom) {
		t.Errorf("expected source error, got %v", err)
	}
}

func TestMergeReinternsTokens(t *testing.T) {
	a := mustIndexer(t, Config{Size: 2})
	a.Add([]string{"x", "y"})
	b := mustIndexer(t, Config{Size: 2})
	b.Add([]string{"y", "x", "y"})

	if err := a.Merge(b); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if a.Count("x", "y") != 2 || a.Count("y", "x") != 1 {
		t.Errorf("merged counts: xy=%d yx=%d", a.Count("x", "y"), a.Count("y", "x"))
	}
	if a.Documents() != 2 {
		t.Errorf("Documents = %d, want 2", a.Documents())
	}
}
