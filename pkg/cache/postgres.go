package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is a Store on a native pgx connection pool. It shares the
// table layout of SQLStore.
type PostgresStore struct {
	pool    *pgxpool.Pool
	table   string
	maxRows int
}

// NewPostgresStore creates a store on pool using table (DefaultTable if empty).
func NewPostgresStore(pool *pgxpool.Pool, table string) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgx pool cannot be nil")
	}
	table, err := validateTable(table)
	if err != nil {
		return nil, err
	}
	return &PostgresStore{pool: pool, table: table, maxRows: DefaultMaxRows}, nil
}

// EnsureSchema creates the cache table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, fmt.Sprintf(schemaSQL, s.table)); err != nil {
		return fmt.Errorf("create cache table: %w", err)
	}
	return nil
}

// Get returns the unexpired row for key.
func (s *PostgresStore) Get(ctx context.Context, key string) (*Entry, error) {
	var (
		response   string
		expiration time.Time
	)
	err := s.pool.QueryRow(ctx, fmt.Sprintf(selectSQL, s.table), key, time.Now()).
		Scan(&response, &expiration)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			CacheMisses.WithLabelValues(BackendPostgres).Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues(BackendPostgres, "get").Inc()
		return nil, fmt.Errorf("select cache row: %w", err)
	}

	CacheHits.WithLabelValues(BackendPostgres).Inc()
	return &Entry{Data: []byte(response), Expires: expiration}, nil
}

// Set upserts the row for key.
func (s *PostgresStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	expires := time.Now().Add(effectiveTTL(ttl))
	if _, err := s.pool.Exec(ctx, fmt.Sprintf(upsertSQL, s.table), key, string(data), expires); err != nil {
		CacheErrors.WithLabelValues(BackendPostgres, "set").Inc()
		return fmt.Errorf("upsert cache row: %w", err)
	}
	CacheStoredBytes.WithLabelValues(BackendPostgres).Add(float64(len(data)))
	return nil
}

// Delete removes the row for key.
func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, fmt.Sprintf(deleteSQL, s.table), key); err != nil {
		CacheErrors.WithLabelValues(BackendPostgres, "delete").Inc()
		return fmt.Errorf("delete cache row: %w", err)
	}
	return nil
}

// Cleanup deletes expired rows once the table exceeds DefaultMaxRows.
func (s *PostgresStore) Cleanup(ctx context.Context) (int64, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, fmt.Sprintf(countSQL, s.table)).Scan(&count); err != nil {
		CacheErrors.WithLabelValues(BackendPostgres, "prune").Inc()
		return 0, fmt.Errorf("count cache rows: %w", err)
	}
	if count <= int64(s.maxRows) {
		return 0, nil
	}

	tag, err := s.pool.Exec(ctx, fmt.Sprintf(cleanupSQL, s.table), time.Now())
	if err != nil {
		CacheErrors.WithLabelValues(BackendPostgres, "prune").Inc()
		return 0, fmt.Errorf("delete expired cache rows: %w", err)
	}
	return tag.RowsAffected(), nil
}
