package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cenk/backoff"
	circuit "github.com/rubyist/circuitbreaker"

	"github.com/matzehuels/depman/pkg/httputil"
	"github.com/matzehuels/depman/pkg/observability"
)

// Client is the HTTP plumbing shared by the registry clients: response
// caching, retries, default headers and a circuit breaker per host.
//
// A Client is safe for concurrent use.
type Client struct {
	name    string
	http    *http.Client
	cache   *httputil.Cache
	headers map[string]string

	attempts int
	delay    time.Duration

	mu       sync.RWMutex
	breakers map[string]*circuit.Breaker
}

// NewClient creates a Client for the registry called name. Cache entries are
// stored under the "name:" namespace of cache; a nil cache disables caching.
// headers are sent with every request and may be nil.
func NewClient(name string, cache *httputil.Cache, headers map[string]string) *Client {
	if cache != nil {
		cache = cache.Namespace(name + ":")
	}
	return &Client{
		name:     name,
		http:     NewHTTPClient(),
		cache:    cache,
		headers:  headers,
		attempts: 3,
		delay:    time.Second,
		breakers: make(map[string]*circuit.Breaker),
	}
}

// WithRetry overrides the default of 3 attempts starting one second apart.
func (c *Client) WithRetry(attempts int, delay time.Duration) *Client {
	c.attempts = attempts
	c.delay = delay
	return c
}

// HTTPClient returns the underlying client, for SDKs that issue their own
// requests.
func (c *Client) HTTPClient() *http.Client { return c.http }

// Cached loads key into v from the cache, or runs fetch (with retries) and
// stores the populated v. refresh skips the lookup but still stores.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	hooks := observability.Cache()
	if c.cache != nil && !refresh {
		if ok, _ := c.cache.Get(key, v); ok {
			hooks.OnCacheHit(ctx, c.name)
			return nil
		}
		hooks.OnCacheMiss(ctx, c.name)
	}
	if err := httputil.Retry(ctx, c.attempts, c.delay, fetch); err != nil {
		return err
	}
	if c.cache != nil {
		if n, err := c.cache.Set(key, v); err == nil {
			hooks.OnCacheSet(ctx, c.name, n)
		}
	}
	return nil
}

// Get performs a GET and JSON-decodes a 200 response into v.
func (c *Client) Get(ctx context.Context, rawURL string, v any) error {
	return c.GetWithHeaders(ctx, rawURL, nil, v)
}

// GetWithHeaders is [Client.Get] with extra headers that override the
// client defaults.
func (c *Client) GetWithHeaders(ctx context.Context, rawURL string, headers map[string]string, v any) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	return c.Guard(u.Host, func() error {
		resp, err := c.doRequest(ctx, rawURL, headers)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return fmt.Errorf("decode %s: %w", u.Path, err)
		}
		return nil
	})
}

// Guard runs fn under the circuit breaker for host. Retryable failures count
// against the breaker; any other outcome, including 404, counts as the host
// being up. While the breaker is open fn is not called and the error wraps
// [ErrUpstreamDown].
func (c *Client) Guard(host string, fn func() error) error {
	b := c.breaker(host)
	if !b.Ready() {
		return fmt.Errorf("%w: circuit open for %s", ErrUpstreamDown, host)
	}
	err := fn()
	if err != nil && httputil.IsRetryable(err) {
		b.Fail()
	} else {
		b.Success()
	}
	return err
}

// Tripped reports whether the breaker for host is currently open.
func (c *Client) Tripped(host string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.breakers[host]
	return ok && b.Tripped()
}

func (c *Client) breaker(host string) *circuit.Breaker {
	c.mu.RLock()
	b, ok := c.breakers[host]
	c.mu.RUnlock()
	if ok {
		return b
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.breakers[host]; ok {
		return b
	}

	// Five consecutive failures open the breaker; it half-opens after an
	// exponentially growing pause.
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 10 * time.Second
	expBackoff.MaxInterval = 2 * time.Minute
	expBackoff.Reset()

	b = circuit.NewBreakerWithOptions(&circuit.Options{
		BackOff:    expBackoff,
		ShouldTrip: circuit.ThresholdTripFunc(5),
	})
	c.breakers[host] = b
	return b
}

func (c *Client) doRequest(ctx context.Context, rawURL string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &httputil.RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}

	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

// CheckStatus maps an HTTP status to the package's sentinel errors. It is
// exported for SDK-based clients that see raw status codes.
func CheckStatus(code int) error { return checkStatus(code) }

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests:
		return &httputil.RetryableError{Err: ErrRateLimited}
	case code >= 500:
		return &httputil.RetryableError{Err: fmt.Errorf("%w: status %d", ErrUpstreamDown, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
