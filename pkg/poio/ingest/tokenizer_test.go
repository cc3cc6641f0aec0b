package ingest

import (
	"reflect"
	"strings"
	"testing"
)

func TestTokenizerWorkedExample(t *testing.T) {
	tokenizer := NewTokenizer()

	got := tokenizer.Tokenize(`This is poio-lib. We'll let you "tokenize".`)
	want := []string{"This", "is", "poio-lib", "We'll", "let", "you", "tokenize"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize = %q, want %q", got, want)
	}
}

func TestTokenizer(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "empty",
			input: "",
			want:  nil,
		},
		{
			name:  "only whitespace",
			input: " \t\n ",
			want:  nil,
		},
		{
			name:  "only punctuation",
			input: "... !? ,",
			want:  nil,
		},
		{
			name:  "umlauts",
			input: "Der Linksdenker ist müde.",
			want:  []string{"Der", "Linksdenker", "ist", "müde"},
		},
		{
			name:  "leading apostrophe kept",
			input: "say 'hello",
			want:  []string{"say", "'hello"},
		},
		{
			name:  "brackets and numbers",
			input: "(3.5 km) [sic]",
			want:  []string{"3", "5", "km", "sic"},
		},
		{
			name:  "typographic quotes",
			input: "„Guten Tag“ sagte er",
			want:  []string{"Guten", "Tag", "sagte", "er"},
		},
	}

	tokenizer := NewTokenizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenizer.Tokenize(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTokenizerLowercase(t *testing.T) {
	tokenizer := NewTokenizer()
	tokenizer.SetLowercase(true)

	if !tokenizer.Lowercase() {
		t.Fatal("Lowercase should be enabled")
	}
	for _, tok := range tokenizer.Tokenize("BERT Transformer Über") {
		if tok != strings.ToLower(tok) {
			t.Errorf("Token %s should be lowercased", tok)
		}
	}
}

func TestTokenizerCustomSeparators(t *testing.T) {
	tokenizer := NewTokenizerWithSeparators("-")

	got := tokenizer.Tokenize("poio-lib rocks.")
	want := []string{"poio", "lib", "rocks."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %q, want %q", got, want)
	}
}
