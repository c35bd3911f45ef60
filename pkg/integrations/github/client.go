package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	gh "github.com/google/go-github/v55/github"
	"golang.org/x/oauth2"

	"github.com/matzehuels/depman/pkg/httputil"
	"github.com/matzehuels/depman/pkg/integrations"
)

// DefaultBaseURL is the public REST API root.
const DefaultBaseURL = "https://api.github.com/"

var repoURLPattern = regexp.MustCompile(`(?i)github\.com[:/]([^/\s]+)/([^/\s#?.]+)`)

// repoURLKeys are the project URL labels most likely to point at the source
// repository, most specific first.
var repoURLKeys = []string{"Repository", "Source", "Source Code", "GitHub", "Code"}

// Client fetches repository metrics through the GitHub REST API. Requests
// share the caching, retry and circuit-breaker behavior of
// [integrations.Client].
type Client struct {
	*integrations.Client
	gh   *gh.Client
	host string
}

// NewClient creates a GitHub client. token may be empty for anonymous access
// (60 requests per hour). An empty baseURL selects [DefaultBaseURL]; cache may
// be nil.
func NewClient(cache *httputil.Cache, token, baseURL, userAgent string) (*Client, error) {
	base := integrations.NewClient("github", cache, nil)

	httpClient := base.HTTPClient()
	if token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		authed := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
		authed.Timeout = httpClient.Timeout
		httpClient = authed
	}

	client := gh.NewClient(httpClient)
	if baseURL != "" && baseURL != DefaultBaseURL {
		u, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("github base url: %w", err)
		}
		client.BaseURL = u
	}
	if userAgent != "" {
		client.UserAgent = userAgent
	}

	return &Client{Client: base, gh: client, host: client.BaseURL.Host}, nil
}

// Fetch returns activity and popularity metrics for owner/repo. refresh
// bypasses the cache. A missing repository yields an error wrapping
// [integrations.ErrNotFound].
func (c *Client) Fetch(ctx context.Context, owner, repo string, refresh bool) (*integrations.RepoMetrics, error) {
	key := strings.ToLower(owner + "/" + repo)

	var m integrations.RepoMetrics
	err := c.Cached(ctx, key, refresh, &m, func() error {
		return c.Guard(c.host, func() error {
			return c.fetchRepo(ctx, owner, repo, &m)
		})
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) fetchRepo(ctx context.Context, owner, repo string, m *integrations.RepoMetrics) error {
	r, resp, err := c.gh.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return mapError(ctx, err, resp, owner+"/"+repo)
	}

	*m = integrations.RepoMetrics{
		RepoURL:    r.GetHTMLURL(),
		Owner:      r.GetOwner().GetLogin(),
		Name:       r.GetName(),
		Stars:      r.GetStargazersCount(),
		OpenIssues: r.GetOpenIssuesCount(),
		License:    r.GetLicense().GetSPDXID(),
		Archived:   r.GetArchived(),
	}
	if m.Owner == "" {
		m.Owner = owner
	}
	if m.Name == "" {
		m.Name = repo
	}
	if m.RepoURL == "" {
		m.RepoURL = fmt.Sprintf("https://github.com/%s/%s", m.Owner, m.Name)
	}
	if r.PushedAt != nil {
		t := r.PushedAt.Time.UTC()
		m.LastCommitAt = &t
	}
	return nil
}

// mapError translates go-github failures into the integrations sentinels so
// callers and the retry loop treat both registries alike.
func mapError(ctx context.Context, err error, resp *gh.Response, what string) error {
	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) {
		return fmt.Errorf("%w: github quota exhausted until %s",
			integrations.ErrRateLimited, rateErr.Rate.Reset.Time.Local().Format(time.Kitchen))
	}
	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return &httputil.RetryableError{Err: integrations.ErrRateLimited}
	}

	if resp != nil && resp.StatusCode != http.StatusOK {
		if statusErr := integrations.CheckStatus(resp.StatusCode); statusErr != nil {
			return fmt.Errorf("github repo %s: %w", what, statusErr)
		}
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if resp == nil {
		return &httputil.RetryableError{Err: fmt.Errorf("%w: %v", integrations.ErrNetwork, err)}
	}
	return err
}

// ExtractRepo locates the GitHub repository of a package. Project URLs
// labelled Repository, Source, Source Code, GitHub or Code are tried first,
// then the remaining project URLs by label, then fallbacks in order
// (homepage, project and download URLs). Only owner and repo names that
// GitHub itself would accept are returned.
func ExtractRepo(urls map[string]string, fallbacks ...string) (owner, repo string, ok bool) {
	owner, repo, ok = integrations.ExtractRepoURL(repoURLPattern, urls, repoURLKeys, fallbacks...)
	if !ok || ValidateRepoRef(owner, repo) != nil {
		return "", "", false
	}
	return owner, repo, true
}
