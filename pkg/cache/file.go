package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const fileSuffix = ".cache"

// FileStore keeps one JSON file per key in a directory. Writes go to a
// temporary file that is renamed into place, so readers never see a
// partially written entry.
type FileStore struct {
	dir string
}

// NewFileStore creates a file store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("cache directory is required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve cache dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o700); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &FileStore{dir: abs}, nil
}

// Dir returns the directory the store writes to.
func (s *FileStore) Dir() string {
	return s.dir
}

// Get reads the entry stored under key.
func (s *FileStore) Get(_ context.Context, key string) (*Entry, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			CacheMisses.WithLabelValues(BackendFile).Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues(BackendFile, "get").Inc()
		return nil, fmt.Errorf("read cache file: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		CacheErrors.WithLabelValues(BackendFile, "get").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	if entry.IsExpired() {
		_ = os.Remove(s.path(key))
		CacheMisses.WithLabelValues(BackendFile).Inc()
		return nil, ErrCacheMiss
	}

	CacheHits.WithLabelValues(BackendFile).Inc()
	return &entry, nil
}

// Set writes data under key via temp file and rename.
func (s *FileStore) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	payload, err := json.Marshal(NewEntry(data, ttl))
	if err != nil {
		CacheErrors.WithLabelValues(BackendFile, "set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	target := s.path(key)
	tmp := filepath.Join(s.dir, ".tmp-"+uuid.NewString())
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		CacheErrors.WithLabelValues(BackendFile, "set").Inc()
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		CacheErrors.WithLabelValues(BackendFile, "set").Inc()
		return fmt.Errorf("rename cache file: %w", err)
	}

	CacheStoredBytes.WithLabelValues(BackendFile).Add(float64(len(data)))
	return nil
}

// Delete removes the file for key.
func (s *FileStore) Delete(_ context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		CacheErrors.WithLabelValues(BackendFile, "delete").Inc()
		return fmt.Errorf("remove cache file: %w", err)
	}
	return nil
}

// Prune deletes every expired or unreadable cache file in the directory
// and returns the number removed.
func (s *FileStore) Prune() (int, error) {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		CacheErrors.WithLabelValues(BackendFile, "prune").Inc()
		return 0, fmt.Errorf("read cache dir: %w", err)
	}

	removed := 0
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), fileSuffix) {
			continue
		}
		path := filepath.Join(s.dir, f.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var entry Entry
		if json.Unmarshal(data, &entry) != nil || entry.IsExpired() {
			if os.Remove(path) == nil {
				removed++
			}
		}
	}
	return removed, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, encodeKey(key)+fileSuffix)
}

// encodeKey maps a cache key onto a fixed-length name that is safe both as
// a file name and as a JetStream KV key.
func encodeKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
