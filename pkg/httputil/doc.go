// Package httputil provides the caching and retry plumbing shared by the
// registry clients.
//
// # Caching
//
// [Cache] keeps JSON-encoded responses on disk under $XDG_CACHE_HOME/depman
// (or ~/.cache/depman) with a TTL, fronted by an in-process LRU so that an
// audit touching the same package twice reads it from memory:
//
//	cache, err := httputil.NewCache("", 24*time.Hour)
//	pypi := cache.Namespace("pypi:")
//	if ok, _ := pypi.Get("requests", &info); !ok {
//	    info = fetch()
//	    pypi.Set("requests", info)
//	}
//
// The directory can be wiped with `depman cache clear`.
//
// # Retry
//
// [Retry] repeats an operation that failed with a [RetryableError], doubling
// the wait each time. Anything not marked retryable (404, decode errors)
// fails fast.
package httputil
