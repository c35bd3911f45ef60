// Package integrations holds the HTTP plumbing for the remote APIs depman
// talks to. Each service has a subpackage:
//
//   - [github.com/matzehuels/depman/pkg/integrations/pypi]: package metadata
//     from the Python Package Index
//   - [github.com/matzehuels/depman/pkg/integrations/github]: repository
//     activity and popularity
//
// Subpackages embed [Client], which provides:
//
//   - cached lookups ([Client.Cached]) over a shared [httputil.Cache]
//   - retries for transient failures (connection errors, 429, 5xx)
//   - a circuit breaker per host ([Client.Guard]) that stops calling a host
//     after five consecutive transient failures
//   - a DNS-caching transport that reports every round trip to
//     [observability.HTTP]
//
// Failures are reported with the sentinels [ErrNotFound], [ErrNetwork],
// [ErrRateLimited] and [ErrUpstreamDown]; match them with errors.Is.
//
// [httputil.Cache]: github.com/matzehuels/depman/pkg/httputil.Cache
// [observability.HTTP]: github.com/matzehuels/depman/pkg/observability.HTTP
package integrations
