package wikipedia

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/cognicore/poio/pkg/poio/internalerr"
	"github.com/cognicore/poio/pkg/poio/langinfo"
)

const indexPage = `<html><body><ul>
<li><a href="enwiki/20240101">enwiki</a>: Dump complete</li>
<li><a href="dewiki/20240220">dewiki</a>: Dump complete</li>
<li><a href="barwiki/20240220">barwiki</a>: Dump complete</li>
</ul></body></html>`

const langPage = `<html><body><ul>
<li><a href="/%[1]s/20240220/%[1]s-20240220-pages-articles-multistream.xml.bz2">%[1]s-20240220-pages-articles-multistream.xml.bz2</a></li>
<li><a href="/%[1]s/20240220/%[1]s-20240220-pages-articles.xml.bz2">%[1]s-20240220-pages-articles.xml.bz2</a> 1.2 GB</li>
</ul></body></html>`

func dumpServer(t *testing.T, downloads *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/backup-index.html", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, indexPage)
	})
	for _, wiki := range []string{"dewiki", "barwiki"} {
		mux.HandleFunc("/"+wiki+"/20240220", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, langPage, wiki)
		})
		mux.HandleFunc("/"+wiki+"/20240220/"+wiki+"-20240220-pages-articles.xml.bz2", func(w http.ResponseWriter, r *http.Request) {
			downloads.Add(1)
			fmt.Fprint(w, "BZh9 fake dump")
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	langs, err := langinfo.Load()
	if err != nil {
		t.Fatalf("langinfo.Load: %v", err)
	}
	c := NewClient(langs)
	c.HTTP = srv.Client()
	c.IndexURL = srv.URL + "/backup-index.html"
	c.TempDir = t.TempDir()
	return c
}

func TestDumpLink(t *testing.T) {
	var downloads atomic.Int32
	srv := dumpServer(t, &downloads)
	c := testClient(t, srv)

	dump, err := c.DumpLink(context.Background(), "de")
	if err != nil {
		t.Fatalf("DumpLink: %v", err)
	}
	if dump.Date != "20240220" || dump.Wiki != "dewiki" {
		t.Errorf("unexpected dump: %+v", dump)
	}
	want := srv.URL + "/dewiki/20240220/dewiki-20240220-pages-articles.xml.bz2"
	if dump.URL != want {
		t.Errorf("URL = %q, want %q", dump.URL, want)
	}

	if _, err := c.DumpLink(context.Background(), "xx"); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDownloadSkipsExisting(t *testing.T) {
	var downloads atomic.Int32
	srv := dumpServer(t, &downloads)
	c := testClient(t, srv)
	dir := t.TempDir()
	link := srv.URL + "/dewiki/20240220/dewiki-20240220-pages-articles.xml.bz2"

	for i := 0; i < 2; i++ {
		path, err := c.Download(context.Background(), link, dir)
		if err != nil {
			t.Fatalf("Download: %v", err)
		}
		if filepath.Base(path) != "dewiki-20240220-pages-articles.xml.bz2" {
			t.Errorf("path = %s", path)
		}
	}
	if downloads.Load() != 1 {
		t.Errorf("downloads = %d, want 1", downloads.Load())
	}
}

func TestDownloadBadStatus(t *testing.T) {
	var downloads atomic.Int32
	srv := dumpServer(t, &downloads)
	c := testClient(t, srv)
	if _, err := c.Download(context.Background(), srv.URL+"/missing.xml.bz2", t.TempDir()); err == nil {
		t.Error("expected error for 404")
	}
}

func TestCleanArticle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Erste Zeile\nzweite\t\tZeile", "Erste Zeile zweite Zeile"},
		{"ein -Wort und 'Zitat' hier", "ein Wort und Zitat hier"},
		{"Nord- und Südtirol", "Nord und Südtirol"},
		{"poio-lib bleibt", "poio-lib bleibt"},
	}
	for _, tt := range tests {
		if got := CleanArticle(tt.in); got != tt.want {
			t.Errorf("CleanArticle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func writeJSONL(t *testing.T, dir string, lines ...string) {
	t.Helper()
	sub := filepath.Join(dir, "AA")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "wiki_00"), []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWriteTextFiltersShortArticles(t *testing.T) {
	dir := t.TempDir()
	long := strings.Repeat("Wort ", 50)
	writeJSONL(t, dir,
		`{"id": "1", "title": "Kurz", "text": "Zu kurz."}`,
		fmt.Sprintf(`{"id": "2", "title": "Lang", "text": %q}`, long+"\nEnde"),
	)

	var buf bytes.Buffer
	n, err := WriteText(context.Background(), dir, &buf)
	if err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	if n != 1 {
		t.Fatalf("articles = %d, want 1", n)
	}
	if got := buf.String(); strings.Count(got, "\n") != 1 || !strings.HasSuffix(got, " Ende\n") {
		t.Errorf("unexpected output %q", got)
	}
}

func TestWriteTextBadJSON(t *testing.T) {
	dir := t.TempDir()
	writeJSONL(t, dir, `{"text": `)
	if _, err := WriteText(context.Background(), dir, &bytes.Buffer{}); err == nil {
		t.Error("expected decode error")
	}
}

// fakeExtractor writes one long article to the directory given after -o.
const fakeExtractor = `for a; do out="$a"; done
mkdir -p "$out/AA"
printf '{"text": "%s"}\n' "$(printf 'Satz %.0s' $(seq 1 60))" > "$out/AA/wiki_00"`

func TestExtractToText(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	var downloads atomic.Int32
	srv := dumpServer(t, &downloads)
	c := testClient(t, srv)
	c.Extractor = []string{"sh", "-c", fakeExtractor, "extractor"}

	// bar has no two-letter code, so the three-letter code names the wiki
	out := filepath.Join(t.TempDir(), "bar.txt")
	n, err := c.ExtractToText(context.Background(), "bar", out)
	if err != nil {
		t.Fatalf("ExtractToText: %v", err)
	}
	if n != 1 || downloads.Load() != 1 {
		t.Errorf("articles = %d, downloads = %d", n, downloads.Load())
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "Satz Satz") {
		t.Errorf("unexpected corpus %q", data)
	}
	if _, err := os.Stat(filepath.Join(c.TempDir, "bar")); !os.IsNotExist(err) {
		t.Errorf("work dir not removed: %v", err)
	}
}

func TestExtractToTextUnknownLanguage(t *testing.T) {
	var downloads atomic.Int32
	srv := dumpServer(t, &downloads)
	c := testClient(t, srv)
	if _, err := c.ExtractToText(context.Background(), "not_existing", filepath.Join(t.TempDir(), "x.txt")); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
