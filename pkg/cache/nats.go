package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// DefaultNATSBucket is the JetStream key-value bucket used when none is given.
const DefaultNATSBucket = "flickr_cache"

// NATSStore is a Store on a NATS JetStream key-value bucket. The bucket TTL
// bounds every entry; the per-entry expiry is enforced on read.
type NATSStore struct {
	kv nats.KeyValue
}

// NewNATSStore binds to bucket on nc, creating it with maxAge when missing.
func NewNATSStore(nc *nats.Conn, bucket string, maxAge time.Duration) (*NATSStore, error) {
	if nc == nil {
		return nil, fmt.Errorf("nats connection cannot be nil")
	}
	if bucket == "" {
		bucket = DefaultNATSBucket
	}

	js, err := nc.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream context: %w", err)
	}

	kv, err := js.KeyValue(bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{
			Bucket:      bucket,
			Description: "Flickr API response cache",
			TTL:         effectiveTTL(maxAge),
		})
	}
	if err != nil {
		return nil, fmt.Errorf("bind kv bucket %s: %w", bucket, err)
	}

	return &NATSStore{kv: kv}, nil
}

// NewNATSStoreFromKV wraps an existing bucket handle.
func NewNATSStoreFromKV(kv nats.KeyValue) *NATSStore {
	return &NATSStore{kv: kv}
}

// Get returns the entry for key.
func (s *NATSStore) Get(_ context.Context, key string) (*Entry, error) {
	kve, err := s.kv.Get(natsKey(key))
	if err != nil {
		if errors.Is(err, nats.ErrKeyNotFound) {
			CacheMisses.WithLabelValues(BackendNATS).Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues(BackendNATS, "get").Inc()
		return nil, fmt.Errorf("kv get: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(kve.Value(), &entry); err != nil {
		CacheErrors.WithLabelValues(BackendNATS, "get").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	if entry.IsExpired() {
		_ = s.kv.Delete(natsKey(key))
		CacheMisses.WithLabelValues(BackendNATS).Inc()
		return nil, ErrCacheMiss
	}

	CacheHits.WithLabelValues(BackendNATS).Inc()
	return &entry, nil
}

// Set writes data under key. A KV put replaces the value atomically.
func (s *NATSStore) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	payload, err := json.Marshal(NewEntry(data, ttl))
	if err != nil {
		CacheErrors.WithLabelValues(BackendNATS, "set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	if _, err := s.kv.Put(natsKey(key), payload); err != nil {
		CacheErrors.WithLabelValues(BackendNATS, "set").Inc()
		return fmt.Errorf("kv put: %w", err)
	}

	CacheStoredBytes.WithLabelValues(BackendNATS).Add(float64(len(data)))
	return nil
}

// Delete removes key.
func (s *NATSStore) Delete(_ context.Context, key string) error {
	if err := s.kv.Delete(natsKey(key)); err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		CacheErrors.WithLabelValues(BackendNATS, "delete").Inc()
		return fmt.Errorf("kv delete: %w", err)
	}
	return nil
}

// KV keys may not contain ':' so cache keys are hashed like file names.
func natsKey(key string) string {
	return encodeKey(key)
}
