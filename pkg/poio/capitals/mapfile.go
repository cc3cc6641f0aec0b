package capitals

import (
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// mapFile is the on-disk form of a Map.
type mapFile struct {
	Entries []mapEntry `yaml:"entries"`
}

type mapEntry struct {
	Token string `yaml:"token"`
	Lower string `yaml:"lower"`
}

// WriteMap encodes m as YAML, entries sorted by token.
func WriteMap(w io.Writer, m Map) error {
	file := mapFile{Entries: make([]mapEntry, 0, len(m))}
	for tok, lower := range m {
		file.Entries = append(file.Entries, mapEntry{Token: tok, Lower: lower})
	}
	sort.Slice(file.Entries, func(i, j int) bool {
		return file.Entries[i].Token < file.Entries[j].Token
	})

	enc := yaml.NewEncoder(w)
	if err := enc.Encode(file); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// ReadMap decodes a map written by WriteMap.
func ReadMap(r io.Reader) (Map, error) {
	var file mapFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && err != io.EOF {
		return nil, err
	}
	m := make(Map, len(file.Entries))
	for _, e := range file.Entries {
		m[e.Token] = e.Lower
	}
	return m, nil
}

// SaveFile writes m to path.
func SaveFile(path string, m Map) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create capitals map %s: %w", path, err)
	}
	if err := WriteMap(f, m); err != nil {
		f.Close()
		return fmt.Errorf("write capitals map %s: %w", path, err)
	}
	return f.Close()
}

// LoadFile reads a map from path.
func LoadFile(path string) (Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open capitals map %s: %w", path, err)
	}
	defer f.Close()

	m, err := ReadMap(f)
	if err != nil {
		return nil, fmt.Errorf("parse capitals map %s: %w", path, err)
	}
	return m, nil
}
