package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Sternrassler/flickr-client/pkg/cache"
	"github.com/Sternrassler/flickr-client/pkg/client"
	"github.com/Sternrassler/flickr-client/pkg/oauth"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Resources are the backends opened for a Config. Close releases them.
type Resources struct {
	Cache  cache.Store
	Tokens oauth.TokenStore

	closers []func() error
	redis   *redis.Client
}

// Close releases every opened connection, in reverse order.
func (r *Resources) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

// Open connects the cache and token backends named by c.
func (c *Config) Open(ctx context.Context) (*Resources, error) {
	res := &Resources{}
	if err := c.openCache(ctx, res); err != nil {
		_ = res.Close()
		return nil, err
	}
	if err := c.openTokens(ctx, res); err != nil {
		_ = res.Close()
		return nil, err
	}
	return res, nil
}

// NewClient opens the backends and builds a client on them.
func (c *Config) NewClient(ctx context.Context, logger *zerolog.Logger) (*client.Client, *Resources, error) {
	res, err := c.Open(ctx)
	if err != nil {
		return nil, nil, err
	}
	cl, err := client.New(c.ClientConfig(res, logger))
	if err != nil {
		_ = res.Close()
		return nil, nil, err
	}
	return cl, res, nil
}

// ClientConfig maps c onto a client.Config using the opened backends.
func (c *Config) ClientConfig(res *Resources, logger *zerolog.Logger) client.Config {
	cfg := client.DefaultConfig(c.APIKey, c.APISecret)
	cfg.ProxyBaseURL = c.ProxyBaseURL
	cfg.CacheTTL = c.CacheTTL
	cfg.HTTPTimeout = c.HTTPTimeout
	cfg.Logger = logger
	if res != nil {
		cfg.Cache = res.Cache
		cfg.Tokens = res.Tokens
	}
	return cfg
}

func (c *Config) openCache(ctx context.Context, res *Resources) error {
	switch c.CacheBackend {
	case CacheNone, "":
		return nil

	case CacheMemory:
		res.Cache = cache.NewMemoryStore()

	case CacheFile:
		store, err := cache.NewFileStore(c.CacheDir)
		if err != nil {
			return err
		}
		res.Cache = store

	case CacheRedis:
		rdb, err := res.redisClient(ctx, c.RedisURL)
		if err != nil {
			return err
		}
		res.Cache = cache.NewRedisStore(rdb)

	case CacheSQL:
		db, err := sql.Open("postgres", c.DatabaseURL)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		res.closers = append(res.closers, db.Close)
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("ping database: %w", err)
		}
		store, err := cache.NewSQLStore(db, c.CacheTable)
		if err != nil {
			return err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		res.Cache = store

	case CachePostgres:
		pool, err := pgxpool.New(ctx, c.DatabaseURL)
		if err != nil {
			return fmt.Errorf("open pgx pool: %w", err)
		}
		res.closers = append(res.closers, func() error { pool.Close(); return nil })
		store, err := cache.NewPostgresStore(pool, c.CacheTable)
		if err != nil {
			return err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		res.Cache = store

	case CacheNATS:
		nc, err := nats.Connect(c.NATSURL, nats.Name("flickr-client"))
		if err != nil {
			return fmt.Errorf("connect nats: %w", err)
		}
		res.closers = append(res.closers, func() error { nc.Close(); return nil })
		store, err := cache.NewNATSStore(nc, c.NATSBucket, c.CacheTTL)
		if err != nil {
			return err
		}
		res.Cache = store

	default:
		return fmt.Errorf("unknown cache backend %q", c.CacheBackend)
	}
	return nil
}

func (c *Config) openTokens(ctx context.Context, res *Resources) error {
	if c.AccessToken != "" {
		res.Tokens = oauth.StaticTokenStore(c.AccessToken, c.AccessSecret)
		return nil
	}

	switch c.TokenBackend {
	case TokensMemory:
		res.Tokens = oauth.NewMemoryTokenStore()
	case TokensFile, "":
		store, err := oauth.NewFileTokenStore(c.TokenFile)
		if err != nil {
			return err
		}
		res.Tokens = store
	case TokensRedis:
		rdb, err := res.redisClient(ctx, c.RedisURL)
		if err != nil {
			return err
		}
		res.Tokens = oauth.NewRedisTokenStore(rdb)
	default:
		return fmt.Errorf("unknown token backend %q", c.TokenBackend)
	}
	return nil
}

// redisClient connects once and is shared by the cache and token stores.
func (r *Resources) redisClient(ctx context.Context, rawURL string) (*redis.Client, error) {
	if r.redis != nil {
		return r.redis, nil
	}
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	r.closers = append(r.closers, rdb.Close)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	r.redis = rdb
	return rdb, nil
}
