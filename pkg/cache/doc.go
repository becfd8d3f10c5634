// Package cache provides a Redis-backed response cache for TBA requests.
//
// The cache manager implements HTTP validator caching with the following features:
//
// - Freshness from Cache-Control max-age, falling back to Expires
// - ETag support for conditional requests (If-None-Match)
// - Last-Modified support (If-Modified-Since)
// - Stale entries retained for revalidation after they expire
// - Prometheus metrics for observability
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	manager := cache.NewManager(redisClient, cache.DefaultRetention)
//
//	key := cache.Key("team/frc4099/simple")
//	entry, err := manager.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// fetch from TBA
//	}
//
// # Storing Responses
//
//	if cache.Cacheable(resp.Header) {
//		entry := cache.NewEntry(resp.Header, body, time.Now())
//		if err := manager.Set(ctx, key, entry); err != nil {
//			return err
//		}
//	}
//
// # Conditional Requests
//
//	if entry.IsExpired() && cache.CanRevalidate(entry) {
//		cache.AddConditionalHeaders(req, entry)
//		// TBA returns 304 if not modified
//	}
//
// # Metrics
//
//   - tba_cache_hits_total - Responses served from a fresh entry
//   - tba_cache_misses_total - Lookups without a stored entry
//   - tba_conditional_requests_total - Revalidation requests sent
//   - tba_304_responses_total - Revalidations answered with 304
//   - tba_cache_errors_total{operation} - Cache operation errors
package cache
