// Command capitals finds tokens that are capitalized only because they start
// a sentence and writes the lowercase map as YAML.
//
// Usage:
//
//	capitals -corpus data/deu -out deu-capitals.yaml [-redis]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
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
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config file")
		corpusDir  = flag.String("corpus", "", "directory of *.txt corpus files")
		lang       = flag.String("lang", "", "corpus language, part of the cache key")
		out        = flag.String("out", "", "output map file (default stdout)")
		useRedis   = flag.Bool("redis", false, "store the map in the Redis cache")
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
		case "out":
			cfg.Capitals.MapFile = *out
		case "redis":
			cfg.Capitals.UseRedis = *useRedis
		}
	})

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, os.Stdout)
	stop()
	if err != nil {
		slog.Error("capitals run failed", "error", err)
		os.Exit(1)
	}
}

// run classifies the corpus and writes the map to the configured file, or
// to stdout when none is set, and optionally to the Redis cache.
func run(ctx context.Context, cfg *config.Config, stdout io.Writer) error {
	src := corpus.NewReader(cfg.Corpus.Dir)

	start := time.Now()
	m, err := capitals.SentenceStartsLowerMap(ctx, src)
	if err != nil {
		return fmt.Errorf("classify corpus: %w", err)
	}
	slog.Info("capitals map built", "entries", len(m), "duration", time.Since(start))

	if cfg.Capitals.MapFile == "" {
		if err := capitals.WriteMap(stdout, m); err != nil {
			return fmt.Errorf("write map: %w", err)
		}
	} else {
		if err := capitals.SaveFile(cfg.Capitals.MapFile, m); err != nil {
			return err
		}
		slog.Info("capitals map written", "path", cfg.Capitals.MapFile)
	}

	if !cfg.Capitals.UseRedis {
		return nil
	}
	fp, err := src.Fingerprint()
	if err != nil {
		return err
	}
	name := rediscache.CorpusName(cfg.Corpus.Language, fp)

	cache, err := rediscache.New(ctx, rediscache.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TTL:      cfg.Redis.CacheTTL,
	})
	if err != nil {
		return err
	}
	defer cache.Close()
	if err := cache.Save(ctx, name, m); err != nil {
		return err
	}
	slog.Info("capitals map cached", "key", rediscache.Key(name))
	return nil
}
