package wikipedia

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cognicore/poio/pkg/poio/ingest"
)

// MinArticleLength is the shortest article, in characters, kept in a corpus.
const MinArticleLength = 200

var reSpace = regexp.MustCompile(`[\t\n]+`)

// Extract runs the extractor on a dump, writing JSON lines files below outDir.
func (c *Client) Extract(ctx context.Context, dumpPath, outDir string) error {
	if len(c.Extractor) == 0 {
		return errors.New("no extractor command configured")
	}
	args := append([]string{}, c.Extractor[1:]...)
	args = append(args, dumpPath, "--json", "-q", "-b", "100M", "-o", outDir)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Extractor[0], args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %s: %w: %s", c.Extractor[0], err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// ExtractToText downloads and extracts the Wikipedia of a language and writes
// its articles to output, one per line. It returns the number of articles
// written. Languages without a two-letter code use their three-letter code
// as wiki name.
func (c *Client) ExtractToText(ctx context.Context, iso6393, output string) (int, error) {
	code := iso6393
	if c.Langs != nil {
		iso6391, err := c.Langs.ISO6391For3(iso6393)
		if err != nil {
			return 0, err
		}
		if iso6391 != "" {
			code = iso6391
		}
	}

	dump, err := c.DumpLink(ctx, code)
	if err != nil {
		return 0, err
	}
	c.log().Info("dump found", "wiki", dump.Wiki, "date", dump.Date, "url", dump.URL)

	work := filepath.Join(c.TempDir, iso6393)
	defer os.RemoveAll(work)

	dumpPath, err := c.Download(ctx, dump.URL, work)
	if err != nil {
		return 0, err
	}
	extracted := filepath.Join(work, "extracted")
	if err := c.Extract(ctx, dumpPath, extracted); err != nil {
		return 0, err
	}

	f, err := os.Create(output)
	if err != nil {
		return 0, err
	}
	n, err := WriteText(ctx, extracted, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, err
	}
	c.log().Info("corpus written", "path", output, "articles", n)
	return n, nil
}

type article struct {
	Text string `json:"text"`
}

// WriteText reads the extractor output in dir (dir/*/wiki_*) and writes every
// article longer than MinArticleLength to w as a single line.
func WriteText(ctx context.Context, dir string, w io.Writer) (int, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*", "wiki_*"))
	if err != nil {
		return 0, err
	}

	bw := bufio.NewWriter(w)
	n := 0
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		written, err := writeFile(file, bw)
		n += written
		if err != nil {
			return n, err
		}
	}
	return n, bw.Flush()
}

func writeFile(file string, w *bufio.Writer) (int, error) {
	f, err := os.Open(file)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	n := 0
	for {
		line, err := r.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 {
			var a article
			if jerr := json.Unmarshal(line, &a); jerr != nil {
				return n, fmt.Errorf("decode %s: %w", file, jerr)
			}
			text := CleanArticle(a.Text)
			if utf8.RuneCountInString(text) > MinArticleLength {
				w.WriteString(text)
				w.WriteByte('\n')
				n++
			}
		}
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("read %s: %w", file, err)
		}
	}
}

// CleanArticle puts an article on a single line and drops hyphens and
// apostrophes that start or end a word.
func CleanArticle(text string) string {
	text = reSpace.ReplaceAllString(text, " ")
	text = ingest.StripMarks(text, func(r []rune, i int) bool {
		return i > 0 && unicode.IsSpace(r[i-1])
	})
	return ingest.StripMarks(text, func(r []rune, i int) bool {
		return i+1 < len(r) && unicode.IsSpace(r[i+1])
	})
}
