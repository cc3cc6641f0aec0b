// Command ngrams counts the n-grams of a corpus directory and writes them to
// a sink.
//
// Usage:
//
//	ngrams -corpus data/deu -lang deu -size 3 -cutoff 2 -db deu.db
//	ngrams -config poio.yaml -sink postgres -append
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cognicore/poio/internal/logger"
	"github.com/cognicore/poio/pkg/poio/capitals"
	"github.com/cognicore/poio/pkg/poio/capitals/rediscache"
	"github.com/cognicore/poio/pkg/poio/config"
	"github.com/cognicore/poio/pkg/poio/corpus"
	"github.com/cognicore/poio/pkg/poio/metrics"
	"github.com/cognicore/poio/pkg/poio/ngram"
	"github.com/cognicore/poio/pkg/poio/store"
)

func main() {
	var (
		configPath  = flag.String("config", "", "path to config file")
		corpusDir   = flag.String("corpus", "", "directory of *.txt corpus files")
		lang        = flag.String("lang", "", "ISO 639-3 code stored with the n-grams")
		size        = flag.Int("size", 0, "n-gram size")
		cutoff      = flag.Int("cutoff", 0, "drop n-grams seen fewer times than this")
		workers     = flag.Int("workers", 0, "parallel ingest workers")
		lowercase   = flag.Bool("lowercase", false, "lowercase every token")
		sinkType    = flag.String("sink", "", "sink: sqlite, postgres, memory or kafka")
		dbPath      = flag.String("db", "", "SQLite database path")
		appendRows  = flag.Bool("append", false, "add counts to existing rows")
		createIndex = flag.Bool("index", false, "create a lookup index after inserting")
		mapFile     = flag.String("capitals", "", "capitals map file (YAML)")
		normalize   = flag.Bool("normalize-capitals", false, "lowercase sentence-initial words that the corpus shows in lowercase elsewhere")
		pushURL     = flag.String("push", "", "Pushgateway URL for run metrics")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "corpus":
			cfg.Corpus.Dir = *corpusDir
		case "lang":
			cfg.Corpus.Language = *lang
		case "size":
			cfg.Ngram.Size = *size
		case "cutoff":
			cfg.Ngram.Cutoff = *cutoff
		case "workers":
			cfg.Ngram.Workers = *workers
		case "lowercase":
			cfg.Ngram.Lowercase = *lowercase
		case "sink":
			cfg.Sink.Type = *sinkType
		case "db":
			cfg.SQLite.Path = *dbPath
		case "append":
			cfg.Sink.Append = *appendRows
		case "index":
			cfg.Sink.CreateIndex = *createIndex
		case "capitals":
			cfg.Capitals.MapFile = *mapFile
		case "normalize-capitals":
			cfg.Capitals.Enabled = *normalize
		case "push":
			cfg.Metrics.PushURL = *pushURL
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("ngram run failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	var m *metrics.Metrics
	if cfg.Metrics.PushURL != "" {
		m = metrics.New()
	}

	src := corpus.NewReader(cfg.Corpus.Dir)
	files, err := src.Files()
	if err != nil {
		return err
	}
	slog.Info("corpus opened", "dir", cfg.Corpus.Dir, "files", len(files), "language", cfg.Corpus.Language)

	start := time.Now()
	caseMap, err := loadCapitals(ctx, cfg, src)
	if err != nil {
		return err
	}
	m.ObserveStage("capitals", time.Since(start))

	ix, err := ngram.New(ngram.Config{
		Size:           cfg.Ngram.Size,
		Cutoff:         cfg.Ngram.Cutoff,
		CaseMap:        caseMap,
		Lowercase:      cfg.Ngram.Lowercase,
		SkipPreprocess: cfg.Ngram.SkipPreprocess,
	})
	if err != nil {
		return err
	}
	ix.SetMetrics(m)

	if err := ix.IngestParallel(ctx, src, cfg.Ngram.Workers); err != nil {
		return err
	}
	removed := ix.Cutoff(cfg.Ngram.Cutoff)
	slog.Info("ngrams counted",
		"documents", ix.Documents(),
		"tokens", ix.Interner().Len(),
		"ngrams", ix.Len(),
		"pruned", removed,
	)

	sink, err := openSink(ctx, cfg)
	if err != nil {
		return err
	}
	defer sink.Close()

	start = time.Now()
	info, err := sink.InsertNgrams(ctx, store.Meta{Language: cfg.Corpus.Language, Size: cfg.Ngram.Size}, ix.Items())
	if err != nil {
		return fmt.Errorf("insert ngrams: %w", err)
	}
	m.ObserveStage("insert", time.Since(start))
	m.AddRows(cfg.Sink.Type, info.Rows)
	slog.Info("ngrams stored", "sink", cfg.Sink.Type, "run", info.ID, "rows", info.Rows)

	if m != nil {
		if err := m.Push(ctx, cfg.Metrics.PushURL, cfg.Metrics.Job); err != nil {
			slog.Warn("metrics push failed", "error", err)
		}
	}
	return nil
}

// loadCapitals returns the case map for the run: a map file when given,
// otherwise a map computed from the corpus, cached in Redis when enabled.
func loadCapitals(ctx context.Context, cfg *config.Config, src *corpus.Reader) (capitals.Map, error) {
	if cfg.Capitals.MapFile != "" {
		m, err := capitals.LoadFile(cfg.Capitals.MapFile)
		if err != nil {
			return nil, err
		}
		slog.Info("capitals map loaded", "path", cfg.Capitals.MapFile, "entries", len(m))
		return m, nil
	}
	if !cfg.Capitals.Enabled {
		return nil, nil
	}

	build := func(ctx context.Context) (capitals.Map, error) {
		return capitals.SentenceStartsLowerMap(ctx, src)
	}
	if !cfg.Capitals.UseRedis {
		m, err := build(ctx)
		if err != nil {
			return nil, err
		}
		slog.Info("capitals map built", "entries", len(m))
		return m, nil
	}

	fp, err := src.Fingerprint()
	if err != nil {
		return nil, err
	}
	name := rediscache.CorpusName(cfg.Corpus.Language, fp)

	cache, err := rediscache.New(ctx, rediscache.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TTL:      cfg.Redis.CacheTTL,
	})
	if err != nil {
		return nil, err
	}
	defer cache.Close()
	m, err := cache.GetOrBuild(ctx, name, build)
	if err != nil {
		return nil, err
	}
	slog.Info("capitals map ready", "entries", len(m), "cache", rediscache.Key(name))
	return m, nil
}
