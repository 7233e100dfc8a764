// Package cache stores raw Flickr API responses keyed by a hash of the
// request.
//
// A key is derived from the method name and the sorted, non-empty request
// parameters; signature, nonce and timestamp parameters are ignored so a
// signed and an unsigned request for the same data share an entry:
//
//	key := cache.Key{
//		Method: "flickr.photos.getInfo",
//		Params: map[string]string{"photo_id": "123"},
//	}.String()
//
// Every backend implements Store:
//
//   - MemoryStore keeps entries in process
//   - FileStore writes one file per key under a directory
//   - RedisStore uses native Redis TTLs
//   - SQLStore and PostgresStore share one table layout
//   - NATSStore uses a JetStream key-value bucket
//
// A Get on an expired entry behaves as a miss.
//
//	entry, err := store.Get(ctx, key)
//	if cache.IsMiss(err) {
//		// fetch from Flickr, then store.Set(ctx, key, body, ttl)
//	}
//
// # Metrics
//
//   - flickr_cache_hits_total{backend}
//   - flickr_cache_misses_total{backend}
//   - flickr_cache_stored_bytes_total{backend}
//   - flickr_cache_errors_total{backend,operation}
package cache
