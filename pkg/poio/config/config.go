// Package config loads the run configuration shared by the poio commands.
// Values come from defaults, then an optional YAML file, then POIO_*
// environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/poio/pkg/poio/internalerr"
)

// Sink names accepted in SinkConfig.Type.
const (
	SinkSQLite   = "sqlite"
	SinkPostgres = "postgres"
	SinkMemory   = "memory"
	SinkKafka    = "kafka"
)

// Config is the top-level run configuration.
type Config struct {
	Corpus   CorpusConfig   `yaml:"corpus"`
	Ngram    NgramConfig    `yaml:"ngram"`
	Capitals CapitalsConfig `yaml:"capitals"`
	Sink     SinkConfig     `yaml:"sink"`
	Postgres PostgresConfig `yaml:"postgres"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// CorpusConfig locates the input documents.
type CorpusConfig struct {
	Dir      string `yaml:"dir"`
	Language string `yaml:"language"`
}

// NgramConfig controls counting.
type NgramConfig struct {
	Size           int  `yaml:"size"`
	Cutoff         int  `yaml:"cutoff"`
	Lowercase      bool `yaml:"lowercase"`
	SkipPreprocess bool `yaml:"skipPreprocess"`
	Workers        int  `yaml:"workers"`
}

// CapitalsConfig controls sentence-start normalization. It is off unless
// Enabled is set or MapFile names a map.
type CapitalsConfig struct {
	Enabled bool   `yaml:"enabled"`
	MapFile string `yaml:"mapFile"`
	// UseRedis caches computed maps under the corpus language and fingerprint.
	UseRedis bool `yaml:"useRedis"`
}

// SinkConfig selects where n-grams are written.
type SinkConfig struct {
	Type        string `yaml:"type"`
	Append      bool   `yaml:"append"`
	CreateIndex bool   `yaml:"createIndex"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// SQLiteConfig holds the database file path.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// RedisConfig holds Redis connection and caching parameters.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// KafkaConfig holds broker and topic settings for the export sink.
type KafkaConfig struct {
	Brokers   []string `yaml:"brokers"`
	Topic     string   `yaml:"topic"`
	BatchSize int      `yaml:"batchSize"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls pushing run metrics to a Pushgateway.
type MetricsConfig struct {
	PushURL string `yaml:"pushUrl"`
	Job     string `yaml:"job"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Corpus: CorpusConfig{
			Dir:      ".",
			Language: "und",
		},
		Ngram: NgramConfig{
			Size:    1,
			Workers: 1,
		},
		Sink: SinkConfig{
			Type: SinkSQLite,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "poio",
			User:            "poio",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    4,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		SQLite: SQLiteConfig{
			Path: "ngrams.db",
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			CacheTTL: 24 * time.Hour,
		},
		Kafka: KafkaConfig{
			Brokers:   []string{"localhost:9092"},
			Topic:     "poio.ngrams",
			BatchSize: 500,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Job: "poio",
		},
	}
}

// Validate rejects settings no run can use.
func (c *Config) Validate() error {
	if c.Ngram.Size < 1 {
		return fmt.Errorf("%w: ngram.size must be at least 1, got %d", internalerr.ErrInvalidConfig, c.Ngram.Size)
	}
	if c.Ngram.Cutoff < 0 {
		return fmt.Errorf("%w: ngram.cutoff must not be negative, got %d", internalerr.ErrInvalidConfig, c.Ngram.Cutoff)
	}
	if c.Ngram.Workers < 1 {
		return fmt.Errorf("%w: ngram.workers must be at least 1, got %d", internalerr.ErrInvalidConfig, c.Ngram.Workers)
	}
	switch c.Sink.Type {
	case SinkSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("%w: sqlite.path is required", internalerr.ErrInvalidConfig)
		}
	case SinkPostgres, SinkMemory:
	case SinkKafka:
		if len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "" {
			return fmt.Errorf("%w: kafka sink needs brokers and a topic", internalerr.ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown sink %q", internalerr.ErrInvalidConfig, c.Sink.Type)
	}
	if strings.TrimSpace(c.Corpus.Language) == "" {
		return fmt.Errorf("%w: corpus.language is required", internalerr.ErrInvalidConfig)
	}
	return nil
}

// applyEnvOverrides reads POIO_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("POIO_CORPUS_DIR"); v != "" {
		cfg.Corpus.Dir = v
	}
	if v := os.Getenv("POIO_CORPUS_LANGUAGE"); v != "" {
		cfg.Corpus.Language = v
	}
	if v := os.Getenv("POIO_NGRAM_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Ngram.Size = n
		}
	}
	if v := os.Getenv("POIO_NGRAM_CUTOFF"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Ngram.Cutoff = n
		}
	}
	if v := os.Getenv("POIO_NGRAM_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Ngram.Workers = n
		}
	}
	if v := os.Getenv("POIO_SINK_TYPE"); v != "" {
		cfg.Sink.Type = v
	}
	if v := os.Getenv("POIO_SQLITE_PATH"); v != "" {
		cfg.SQLite.Path = v
	}
	if v := os.Getenv("POIO_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("POIO_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("POIO_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("POIO_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("POIO_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("POIO_POSTGRES_SSLMODE"); v != "" {
		cfg.Postgres.SSLMode = v
	}
	if v := os.Getenv("POIO_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("POIO_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("POIO_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("POIO_KAFKA_TOPIC"); v != "" {
		cfg.Kafka.Topic = v
	}
	if v := os.Getenv("POIO_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("POIO_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("POIO_METRICS_PUSH_URL"); v != "" {
		cfg.Metrics.PushURL = v
	}
}
