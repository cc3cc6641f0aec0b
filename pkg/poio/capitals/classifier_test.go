package capitals

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/cognicore/poio/pkg/poio/corpus"
	"github.com/cognicore/poio/pkg/poio/ingest"
)

func TestHasCapitalShape(t *testing.T) {
	tests := []struct {
		token string
		want  bool
	}{
		{"Der", true},
		{"Über", true},
		{"McDonald", true},
		{"ABc", true},
		{"We'll", true},
		{"NASA", false},
		{"A", false},
		{"der", false},
		{"'Der", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := HasCapitalShape(tt.token); got != tt.want {
			t.Errorf("HasCapitalShape(%q) = %v, want %v", tt.token, got, tt.want)
		}
	}
}

func TestClassifierMap(t *testing.T) {
	c := NewClassifier()
	c.Observe([]string{"Der", "Hund", "sieht", "der", "Katze", "zu"})
	c.Observe([]string{"Der", "Hund", "bellt"})
	c.Observe([]string{"Berlin", "ist", "groß"})
	c.Observe([]string{"Im", "Zentrum", "liegt", "Berlin"})

	m := c.Map()
	want := Map{"Der": "der"}
	if !reflect.DeepEqual(m, want) {
		t.Fatalf("Map = %v, want %v", m, want)
	}
	if c.Sentences() != 4 {
		t.Errorf("Sentences = %d, want 4", c.Sentences())
	}
	if c.Candidates() != 3 {
		t.Errorf("Candidates = %d, want 3", c.Candidates())
	}
}

func TestClassifierStrictComparison(t *testing.T) {
	c := NewClassifier()
	// "Die" and "die" occur once each in running text: a tie is not enough.
	c.Observe([]string{"Die", "Katze"})
	c.Observe([]string{"Sie", "sagt", "Die", "und", "die"})

	if _, ok := c.Map()["Die"]; ok {
		t.Error("tie should not produce a mapping")
	}
}

func TestClassifierOnlySentenceInitial(t *testing.T) {
	c := NewClassifier()
	c.Observe([]string{"Linksdenker", "schläft"})
	c.Observe([]string{"Linksdenker", "wacht"})

	if len(c.Map()) != 0 {
		t.Errorf("token seen only sentence-initially must not be mapped: %v", c.Map())
	}
}

func TestClassifierEmpty(t *testing.T) {
	c := NewClassifier()
	c.Observe(nil)
	c.Observe([]string{})

	if len(c.Map()) != 0 {
		t.Error("empty input should produce an empty map")
	}
	if c.Sentences() != 0 {
		t.Errorf("empty sentences should not be counted, got %d", c.Sentences())
	}
}

func TestClassifierMapIsSnapshot(t *testing.T) {
	c := NewClassifier()
	c.Observe([]string{"Der", "der"})
	m := c.Map()
	m["Der"] = "changed"

	if c.Map()["Der"] != "der" {
		t.Error("modifying a returned map must not affect the classifier")
	}
}

func TestBuildFromCorpus(t *testing.T) {
	src := corpus.Strings{
		"Der Hund sieht der Katze zu. Der Hund bellt.",
		"Wir fahren nach Berlin. Berlin ist groß.",
	}

	m, err := Build(context.Background(), src, ingest.DefaultPipeline())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if m["Der"] != "der" {
		t.Errorf("expected Der -> der, got %v", m)
	}
	if _, ok := m["Berlin"]; ok {
		t.Error("Berlin is never lowercase and must not be mapped")
	}
}

func TestBuildEmptyCorpus(t *testing.T) {
	m, err := SentenceStartsLowerMap(context.Background(), corpus.Strings{})
	if err != nil {
		t.Fatalf("SentenceStartsLowerMap: %v", err)
	}
	if len(m) != 0 {
		t.Errorf("expected empty map, got %v", m)
	}
}

func TestBuildPropagatesReadError(t *testing.T) {
	src := corpus.NewFileReader("/nonexistent/corpus.txt")
	_, err := SentenceStartsLowerMap(context.Background(), src)
	if err == nil {
		t.Fatal("expected read error")
	}
}

type failingSource struct{ err error }

func (f failingSource) Documents(ctx context.Context, fn func(string) error) error {
	if err := fn("Der Hund."); err != nil {
		return err
	}
	return f.err
}

func TestBuildReturnsSourceError(t *testing.T) {
	boom := errors.New("boom")
	_, err := SentenceStartsLowerMap(context.Background(), failingSource{err: boom})
	if !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}

func TestMapFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capitals.yaml")
	m := Map{"Der": "der", "Über": "über"}

	if err := SaveFile(path, m); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !reflect.DeepEqual(got, m) {
		t.Errorf("LoadFile = %v, want %v", got, m)
	}
}

func TestReadMapEmpty(t *testing.T) {
	m, err := ReadMap(bytes.NewReader(nil))
	if err != nil {
		t.Fatalf("ReadMap: %v", err)
	}
	if len(m) != 0 {
		t.Errorf("expected empty map, got %v", m)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile("/nonexistent/capitals.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

type failingWriter struct{ err error }

func (f failingWriter) Write([]byte) (int, error) { return 0, f.err }

func TestWriteMapReportsWriteError(t *testing.T) {
	boom := errors.New("disk full")
	if err := WriteMap(failingWriter{err: boom}, Map{"Der": "der"}); err == nil {
		t.Fatal("expected write error")
	}
}
