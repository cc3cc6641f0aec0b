// Package langinfo maps between ISO 639 language codes and names. The code
// table is the SIL iso-639-3.tab file, embedded together with a small table
// of coordinates.
package langinfo

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/poio/pkg/poio/internalerr"
)

//go:embed data/iso-639-3.tab
var isoRaw []byte

//go:embed data/geo.yaml
var geoRaw []byte

// Language is one row of the code table.
type Language struct {
	ISO6393 string
	ISO6391 string
	Name    string
	Geo     *Geo
}

// Geo is a representative point for a language.
type Geo struct {
	Lat  float64 `yaml:"lat"`
	Long float64 `yaml:"long"`
}

// Table is a read-only language lookup.
type Table struct {
	byISO3 map[string]Language
	byISO1 map[string]string
}

var loadDefault = sync.OnceValues(func() (*Table, error) {
	return Parse(isoRaw, geoRaw)
})

// Load returns the table built from the embedded data. It is parsed once.
func Load() (*Table, error) {
	return loadDefault()
}

// Parse builds a table from a SIL code table and a YAML map of coordinates
// keyed by ISO 639-3 code. geo may be empty.
func Parse(iso, geo []byte) (*Table, error) {
	t := &Table{
		byISO3: make(map[string]Language),
		byISO1: make(map[string]string),
	}

	sc := bufio.NewScanner(bytes.NewReader(iso))
	header := true
	for sc.Scan() {
		if header {
			header = false
			continue
		}
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 7 {
			return nil, fmt.Errorf("%w: code table row %q has %d fields", internalerr.ErrInvalidInput, line, len(fields))
		}
		lang := Language{ISO6393: fields[0], ISO6391: fields[3], Name: fields[6]}
		t.byISO3[lang.ISO6393] = lang
		if lang.ISO6391 != "" {
			t.byISO1[lang.ISO6391] = lang.ISO6393
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read code table: %w", err)
	}

	var coords map[string]Geo
	if err := yaml.Unmarshal(geo, &coords); err != nil {
		return nil, fmt.Errorf("parse geo table: %w", err)
	}
	for code, g := range coords {
		lang, ok := t.byISO3[code]
		if !ok {
			continue
		}
		lang.Geo = &g
		t.byISO3[code] = lang
	}
	return t, nil
}

// Lookup returns the row for an ISO 639-3 code.
func (t *Table) Lookup(iso6393 string) (Language, error) {
	lang, ok := t.byISO3[iso6393]
	if !ok {
		return Language{}, fmt.Errorf("%w: language %q", internalerr.ErrNotFound, iso6393)
	}
	return lang, nil
}

// ISO6391For3 returns the two-letter code for a three-letter code. A known
// language without a two-letter code yields "" and no error.
func (t *Table) ISO6391For3(iso6393 string) (string, error) {
	lang, err := t.Lookup(iso6393)
	if err != nil {
		return "", err
	}
	return lang.ISO6391, nil
}

// ISO6393For1 returns the three-letter code for a two-letter code.
func (t *Table) ISO6393For1(iso6391 string) (string, error) {
	code, ok := t.byISO1[iso6391]
	if !ok {
		return "", fmt.Errorf("%w: two-letter code %q", internalerr.ErrNotFound, iso6391)
	}
	return code, nil
}

// Name returns the reference name of a language.
func (t *Table) Name(iso6393 string) (string, error) {
	lang, err := t.Lookup(iso6393)
	if err != nil {
		return "", err
	}
	return lang.Name, nil
}

// Coordinates returns the location of a language, if the table has one.
func (t *Table) Coordinates(iso6393 string) (Geo, bool) {
	lang, ok := t.byISO3[iso6393]
	if !ok || lang.Geo == nil {
		return Geo{}, false
	}
	return *lang.Geo, true
}

// Len returns the number of languages.
func (t *Table) Len() int {
	return len(t.byISO3)
}
