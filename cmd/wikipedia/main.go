// Command wikipedia downloads the Wikipedia of a language and writes its
// articles to a corpus file, one article per line.
//
// Usage:
//
//	wikipedia -lang bar -out bar.txt [-extractor "python -m wikiextractor.WikiExtractor"]
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/cognicore/poio/internal/logger"
	"github.com/cognicore/poio/pkg/poio/langinfo"
	"github.com/cognicore/poio/pkg/poio/wikipedia"
)

func main() {
	var (
		lang      = flag.String("lang", "", "ISO 639-3 code of the Wikipedia (required)")
		out       = flag.String("out", "", "output corpus file (required)")
		extractor = flag.String("extractor", "wikiextractor", "extractor command")
		indexURL  = flag.String("index", wikipedia.DefaultIndexURL, "dump index URL")
		tmpDir    = flag.String("tmp", "", "work directory for dumps")
		logLevel  = flag.String("log-level", "info", "log level")
	)
	flag.Parse()

	logger.Setup(*logLevel, "text")

	if *lang == "" || *out == "" {
		slog.Error("-lang and -out are required")
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	langs, err := langinfo.Load()
	if err != nil {
		slog.Error("load language table", "error", err)
		os.Exit(1)
	}
	if name, err := langs.Name(*lang); err == nil {
		slog.Info("extracting wikipedia", "language", name, "code", *lang)
	}

	client := wikipedia.NewClient(langs)
	client.IndexURL = *indexURL
	client.Extractor = strings.Fields(*extractor)
	if *tmpDir != "" {
		client.TempDir = *tmpDir
	}

	n, err := client.ExtractToText(ctx, *lang, *out)
	if err != nil {
		slog.Error("extraction failed", "error", err)
		os.Exit(1)
	}
	slog.Info("done", "articles", n, "path", *out)
}
