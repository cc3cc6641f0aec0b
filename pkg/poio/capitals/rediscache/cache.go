// Package rediscache stores computed capitalization maps in Redis so that a
// corpus only has to be classified once across n-gram runs.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/cognicore/poio/internal/logger"
	"github.com/cognicore/poio/pkg/poio/capitals"
)

const keyPrefix = "poio:capitals:"

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// kv is the subset of *redis.Client the cache uses.
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Close() error
}

// Cache reads and writes capitals.Map values under a corpus name.
type Cache struct {
	rdb    kv
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
}

// New connects to Redis and verifies the connection with a PING.
func New(ctx context.Context, opts Options) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return NewWithClient(rdb, opts.TTL), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(rdb *redis.Client, ttl time.Duration) *Cache {
	return newCache(rdb, ttl)
}

func newCache(rdb kv, ttl time.Duration) *Cache {
	return &Cache{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger.WithComponent("capitals-cache"),
	}
}

// Key returns the Redis key used for a corpus name.
func Key(name string) string {
	return keyPrefix + name
}

// CorpusName names the map of one corpus in one language. fingerprint
// identifies the corpus contents, see corpus.Reader.Fingerprint.
func CorpusName(language, fingerprint string) string {
	return language + ":" + fingerprint
}

// Save stores m under name. A zero TTL keeps the entry forever.
func (c *Cache) Save(ctx context.Context, name string, m capitals.Map) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal capitals map: %w", err)
	}
	if err := c.rdb.Set(ctx, Key(name), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("store capitals map %s: %w", name, err)
	}
	c.logger.Debug("capitals map stored", "name", name, "entries", len(m))
	return nil
}

// Load returns the map stored under name. ok is false when nothing is stored.
func (c *Cache) Load(ctx context.Context, name string) (capitals.Map, bool, error) {
	data, err := c.rdb.Get(ctx, Key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load capitals map %s: %w", name, err)
	}
	m := make(capitals.Map)
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, false, fmt.Errorf("decode capitals map %s: %w", name, err)
	}
	c.logger.Debug("capitals map cache hit", "name", name, "entries", len(m))
	return m, true, nil
}

// GetOrBuild returns the cached map for name, or calls build and caches its
// result. Concurrent callers for the same name share one build.
func (c *Cache) GetOrBuild(ctx context.Context, name string, build func(context.Context) (capitals.Map, error)) (capitals.Map, error) {
	val, err, _ := c.group.Do(name, func() (any, error) {
		if m, ok, err := c.Load(ctx, name); err != nil {
			return nil, err
		} else if ok {
			return m, nil
		}

		m, err := build(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.Save(ctx, name, m); err != nil {
			return nil, err
		}
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return val.(capitals.Map), nil
}

// Close closes the underlying client.
func (c *Cache) Close() error {
	return c.rdb.Close()
}
