// Package corpus reads Poio corpora. A corpus is one or more text files in a
// directory; every line of every file is one document.
package corpus

import (
	"bufio"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cognicore/poio/pkg/poio/ingest"
)

// Source produces documents in order. Documents stops at the first error
// returned by fn or by the underlying storage and returns it.
type Source interface {
	Documents(ctx context.Context, fn func(doc string) error) error
}

// Reader reads documents from the *.txt files of a corpus directory, or from
// an explicit list of files.
type Reader struct {
	dir   string
	files []string
}

// NewReader creates a reader for the *.txt files in dir.
func NewReader(dir string) *Reader {
	return &Reader{dir: dir}
}

// NewFileReader creates a reader over the given files, read in that order.
func NewFileReader(files ...string) *Reader {
	return &Reader{files: files}
}

// Files returns the corpus files in the order they are read.
func (r *Reader) Files() ([]string, error) {
	if r.files != nil {
		return r.files, nil
	}
	files, err := filepath.Glob(filepath.Join(r.dir, "*.txt"))
	if err != nil {
		return nil, fmt.Errorf("list corpus %s: %w", r.dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// Fingerprint identifies the corpus contents by the absolute path, size and
// modification time of every file. It changes when a file is added, removed
// or rewritten.
func (r *Reader) Fingerprint() (string, error) {
	files, err := r.Files()
	if err != nil {
		return "", err
	}
	h := sha256.New()
	for _, path := range files {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("fingerprint %s: %w", path, err)
		}
		info, err := os.Stat(path)
		if err != nil {
			return "", fmt.Errorf("fingerprint %s: %w", path, err)
		}
		fmt.Fprintf(h, "%s|%d|%d\n", abs, info.Size(), info.ModTime().UnixNano())
	}
	return fmt.Sprintf("%x", h.Sum(nil)[:16]), nil
}

// Documents calls fn for every line of every corpus file, without the line
// terminator.
func (r *Reader) Documents(ctx context.Context, fn func(doc string) error) error {
	files, err := r.Files()
	if err != nil {
		return err
	}
	for _, path := range files {
		if err := readLines(ctx, path, fn); err != nil {
			return err
		}
	}
	return nil
}

func readLines(ctx context.Context, path string, fn func(doc string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("read corpus file %s: %w", path, err)
	}
	defer f.Close()

	// Wikipedia articles are single lines longer than bufio.Scanner allows.
	br := bufio.NewReaderSize(f, 64*1024)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			line = strings.TrimSuffix(line, "\n")
			line = strings.TrimSuffix(line, "\r")
			if ferr := fn(line); ferr != nil {
				return ferr
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read corpus file %s: %w", path, err)
		}
	}
}

// Sentences calls fn for every sentence of every document.
func Sentences(ctx context.Context, src Source, p *ingest.Pipeline, fn func(sentence string) error) error {
	return src.Documents(ctx, func(doc string) error {
		for _, sentence := range p.Sentences(doc) {
			if err := fn(sentence); err != nil {
				return err
			}
		}
		return nil
	})
}

// TokenizedSentences calls fn with the tokens of every sentence of every
// document.
func TokenizedSentences(ctx context.Context, src Source, tok ingest.SentenceTokenizer, fn func(tokens []string) error) error {
	return src.Documents(ctx, func(doc string) error {
		for _, tokens := range tok.TokenizedSentences(doc) {
			if err := fn(tokens); err != nil {
				return err
			}
		}
		return nil
	})
}

// Strings is an in-memory Source.
type Strings []string

// Documents implements Source.
func (s Strings) Documents(ctx context.Context, fn func(doc string) error) error {
	for _, doc := range s {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}
	}
	return nil
}
