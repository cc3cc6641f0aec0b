package store

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/cognicore/poio/pkg/poio/internalerr"
)

func TestWordColumns(t *testing.T) {
	tests := []struct {
		size int
		want []string
	}{
		{1, []string{"word"}},
		{2, []string{"word_1", "word"}},
		{3, []string{"word_2", "word_1", "word"}},
	}
	for _, tt := range tests {
		if got := WordColumns(tt.size); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("WordColumns(%d) = %v, want %v", tt.size, got, tt.want)
		}
	}
}

func TestInsertSQL(t *testing.T) {
	got := InsertSQL(Dialect{Name: "postgres", Placeholder: Dollar}, 2, true)
	want := "INSERT INTO _2_gram (language, word_1, word, count) VALUES ($1, $2, $3, $4) " +
		"ON CONFLICT(language, word_1, word) DO UPDATE SET count = _2_gram.count + excluded.count"
	if got != want {
		t.Errorf("InsertSQL =\n%s\nwant\n%s", got, want)
	}

	got = InsertSQL(Dialect{Name: "sqlite", Placeholder: Question}, 1, false)
	if !strings.Contains(got, "VALUES (?, ?, ?)") || !strings.HasSuffix(got, "count = excluded.count") {
		t.Errorf("unexpected sqlite insert: %s", got)
	}
}

func TestCreateTableAndIndexSQL(t *testing.T) {
	ddl := CreateTableSQL(3)
	for _, part := range []string{"_3_gram", "word_2 TEXT NOT NULL", "PRIMARY KEY(language, word_2, word_1, word)"} {
		if !strings.Contains(ddl, part) {
			t.Errorf("CreateTableSQL missing %q:\n%s", part, ddl)
		}
	}
	if got := CreateIndexSQL(3); !strings.Contains(got, "ON _3_gram (language, word_2, word_1)") {
		t.Errorf("CreateIndexSQL(3) = %s", got)
	}
	if got := CreateIndexSQL(1); !strings.Contains(got, "ON _1_gram (language, word)") {
		t.Errorf("CreateIndexSQL(1) = %s", got)
	}
}

func TestMetaValidate(t *testing.T) {
	if err := (Meta{Language: "deu", Size: 2}).Validate(); err != nil {
		t.Errorf("valid meta rejected: %v", err)
	}
	for _, m := range []Meta{{Language: "deu", Size: 0}, {Language: " ", Size: 1}} {
		if err := m.Validate(); !errors.Is(err, internalerr.ErrInvalidInput) {
			t.Errorf("Validate(%+v) = %v, want ErrInvalidInput", m, err)
		}
	}
}

func TestCheckRow(t *testing.T) {
	meta := Meta{Language: "deu", Size: 2}
	if err := CheckRow(meta, []string{"a", "b"}); err != nil {
		t.Errorf("CheckRow: %v", err)
	}
	if err := CheckRow(meta, []string{"a"}); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestIDGeneratorMonotonic(t *testing.T) {
	g := NewIDGenerator()
	now := time.Now()
	prev := g.New(now)
	for i := 0; i < 100; i++ {
		id := g.New(now)
		if id <= prev {
			t.Fatalf("ids not monotonic: %s <= %s", id, prev)
		}
		prev = id
	}
	if len(prev) != 26 {
		t.Errorf("ULID length = %d, want 26", len(prev))
	}
}
