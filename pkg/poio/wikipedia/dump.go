// Package wikipedia turns a Wikipedia database dump into a corpus file with
// one article per line.
package wikipedia

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/cognicore/poio/internal/logger"
	"github.com/cognicore/poio/pkg/poio/internalerr"
	"github.com/cognicore/poio/pkg/poio/langinfo"
)

// DefaultIndexURL lists the latest dump of every wiki.
const DefaultIndexURL = "https://dumps.wikimedia.org/backup-index.html"

// Dump is a downloadable pages-articles dump.
type Dump struct {
	Wiki string
	Date string
	URL  string
}

// Client finds, downloads and extracts dumps.
type Client struct {
	HTTP     *http.Client
	IndexURL string
	// Extractor is the command prefix of the WikiExtractor-compatible tool.
	Extractor []string
	// TempDir is where dumps are downloaded and extracted.
	TempDir string
	Langs   *langinfo.Table

	logger *slog.Logger
}

// NewClient returns a client using the public dump index.
func NewClient(langs *langinfo.Table) *Client {
	return &Client{
		HTTP:      &http.Client{Timeout: 30 * time.Minute},
		IndexURL:  DefaultIndexURL,
		Extractor: []string{"wikiextractor"},
		TempDir:   filepath.Join(os.TempDir(), "poio-corpus-data"),
		Langs:     langs,
		logger:    logger.WithComponent("wikipedia"),
	}
}

func (c *Client) log() *slog.Logger {
	if c.logger == nil {
		c.logger = logger.WithComponent("wikipedia")
	}
	return c.logger
}

// DumpLink resolves the latest pages-articles dump of the wiki with the
// given two-letter (or fallback three-letter) code.
func (c *Client) DumpLink(ctx context.Context, code string) (Dump, error) {
	wiki := code + "wiki"

	indexURL, err := url.Parse(c.IndexURL)
	if err != nil {
		return Dump{}, fmt.Errorf("parse index url: %w", err)
	}
	links, err := c.anchors(ctx, indexURL.String())
	if err != nil {
		return Dump{}, err
	}
	var page *url.URL
	for _, a := range links {
		if a.text == wiki {
			if page, err = indexURL.Parse(a.href); err != nil {
				return Dump{}, fmt.Errorf("resolve %s link: %w", wiki, err)
			}
		}
	}
	if page == nil {
		return Dump{}, fmt.Errorf("%w: no %s in dump index", internalerr.ErrNotFound, wiki)
	}

	links, err = c.anchors(ctx, page.String())
	if err != nil {
		return Dump{}, err
	}
	re := regexp.MustCompile("^" + regexp.QuoteMeta(wiki) + `-(\d{8})-pages-articles\.xml\.bz2`)
	for _, a := range links {
		m := re.FindStringSubmatch(a.text)
		if m == nil {
			continue
		}
		link, err := page.Parse(a.href)
		if err != nil {
			return Dump{}, fmt.Errorf("resolve dump link: %w", err)
		}
		return Dump{Wiki: wiki, Date: m[1], URL: link.String()}, nil
	}
	return Dump{}, fmt.Errorf("%w: no pages-articles dump on %s", internalerr.ErrNotFound, page)
}

// Download stores the dump in dir and returns the file path. An existing
// file is not downloaded again.
func (c *Client) Download(ctx context.Context, link, dir string) (string, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("parse dump link: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}
	dest := filepath.Join(dir, path.Base(u.Path))
	if _, err := os.Stat(dest); err == nil {
		c.log().Info("dump already downloaded", "path", dest)
		return dest, nil
	}

	resp, err := c.get(ctx, link)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("download %s: %w", link, err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", err
	}
	c.log().Info("dump downloaded", "path", dest, "bytes", n)
	return dest, nil
}

type anchor struct {
	href string
	text string
}

func (c *Client) anchors(ctx context.Context, pageURL string) ([]anchor, error) {
	resp, err := c.get(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}

	var out []anchor
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key == "href" {
					out = append(out, anchor{href: attr.Val, text: strings.TrimSpace(nodeText(n))})
					break
				}
			}
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(doc)
	return out, nil
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			collect(ch)
		}
	}
	collect(n)
	return b.String()
}

func (c *Client) get(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "poio-corpus/1.0")

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", target, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("get %s: status %d", target, resp.StatusCode)
	}
	return resp, nil
}
