package ingest

import (
	"testing"
	"unicode"
)

func TestStripMarks(t *testing.T) {
	leading := func(r []rune, i int) bool { return i > 0 && unicode.IsSpace(r[i-1]) }
	trailing := func(r []rune, i int) bool { return i+1 < len(r) && unicode.IsSpace(r[i+1]) }

	tests := []struct {
		name string
		in   string
		drop func([]rune, int) bool
		want string
	}{
		{"leading hyphen", "ein -wort", leading, "ein wort"},
		{"leading apostrophe", "ein 'wort", leading, "ein wort"},
		{"inner marks kept", "poio-lib we'll", leading, "poio-lib we'll"},
		{"trailing hyphen", "wort- ende", trailing, "wort ende"},
		{"trailing at end of text kept", "wort-", trailing, "wort-"},
		{"multibyte neighbours", "über -ändern", leading, "über ändern"},
		{"no marks", "kein Zeichen", leading, "kein Zeichen"},
		{"decides on unmodified input", "a --b", leading, "a -b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripMarks(tt.in, tt.drop); got != tt.want {
				t.Errorf("StripMarks(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
