package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"
)

const (
	// DefaultTable is the table used by the relational stores.
	DefaultTable = "flickr_cache"

	// DefaultMaxRows is the row count above which Cleanup purges expired rows.
	DefaultMaxRows = 1000
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// Relational schema shared by SQLStore and PostgresStore.
const (
	schemaSQL = `CREATE TABLE IF NOT EXISTS %s (
	request    VARCHAR(128) PRIMARY KEY,
	response   TEXT NOT NULL,
	expiration TIMESTAMPTZ NOT NULL
)`
	selectSQL = `SELECT response, expiration FROM %s WHERE request = $1 AND expiration > $2`
	upsertSQL = `INSERT INTO %s (request, response, expiration) VALUES ($1, $2, $3)
ON CONFLICT (request) DO UPDATE SET response = EXCLUDED.response, expiration = EXCLUDED.expiration`
	deleteSQL  = `DELETE FROM %s WHERE request = $1`
	countSQL   = `SELECT COUNT(*) FROM %s`
	cleanupSQL = `DELETE FROM %s WHERE expiration <= $1`
)

func validateTable(table string) (string, error) {
	if table == "" {
		return DefaultTable, nil
	}
	if !tableNamePattern.MatchString(table) {
		return "", fmt.Errorf("invalid cache table name %q", table)
	}
	return table, nil
}

// SQLStore is a Store backed by a database/sql handle. Queries use
// PostgreSQL placeholders; the binaries open it with the lib/pq driver.
type SQLStore struct {
	db      *sql.DB
	table   string
	maxRows int
}

// NewSQLStore creates a store on db using table (DefaultTable if empty).
func NewSQLStore(db *sql.DB, table string) (*SQLStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sql db cannot be nil")
	}
	table, err := validateTable(table)
	if err != nil {
		return nil, err
	}
	return &SQLStore{db: db, table: table, maxRows: DefaultMaxRows}, nil
}

// EnsureSchema creates the cache table if it does not exist.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(schemaSQL, s.table)); err != nil {
		return fmt.Errorf("create cache table: %w", err)
	}
	return nil
}

// Get returns the unexpired row for key.
func (s *SQLStore) Get(ctx context.Context, key string) (*Entry, error) {
	var (
		response   string
		expiration time.Time
	)
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(selectSQL, s.table), key, time.Now()).
		Scan(&response, &expiration)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			CacheMisses.WithLabelValues(BackendSQL).Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues(BackendSQL, "get").Inc()
		return nil, fmt.Errorf("select cache row: %w", err)
	}

	CacheHits.WithLabelValues(BackendSQL).Inc()
	return &Entry{Data: []byte(response), Expires: expiration}, nil
}

// Set upserts the row for key in a single statement.
func (s *SQLStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	expires := time.Now().Add(effectiveTTL(ttl))
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(upsertSQL, s.table), key, string(data), expires); err != nil {
		CacheErrors.WithLabelValues(BackendSQL, "set").Inc()
		return fmt.Errorf("upsert cache row: %w", err)
	}
	CacheStoredBytes.WithLabelValues(BackendSQL).Add(float64(len(data)))
	return nil
}

// Delete removes the row for key.
func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(deleteSQL, s.table), key); err != nil {
		CacheErrors.WithLabelValues(BackendSQL, "delete").Inc()
		return fmt.Errorf("delete cache row: %w", err)
	}
	return nil
}

// SetMaxRows changes the Cleanup threshold.
func (s *SQLStore) SetMaxRows(n int) {
	if n > 0 {
		s.maxRows = n
	}
}

// Cleanup deletes expired rows once the table holds more than the
// configured maximum. It returns the number of rows deleted.
func (s *SQLStore) Cleanup(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, fmt.Sprintf(countSQL, s.table)).Scan(&count); err != nil {
		CacheErrors.WithLabelValues(BackendSQL, "prune").Inc()
		return 0, fmt.Errorf("count cache rows: %w", err)
	}
	if count <= int64(s.maxRows) {
		return 0, nil
	}

	res, err := s.db.ExecContext(ctx, fmt.Sprintf(cleanupSQL, s.table), time.Now())
	if err != nil {
		CacheErrors.WithLabelValues(BackendSQL, "prune").Inc()
		return 0, fmt.Errorf("delete expired cache rows: %w", err)
	}
	return res.RowsAffected()
}
