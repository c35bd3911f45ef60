package integrations

import (
	"context"
	"errors"
	"maps"
	"regexp"
	"slices"
	"strings"
	"time"

	errs "github.com/matzehuels/depman/pkg/errors"
	"github.com/matzehuels/depman/pkg/httputil"
)

var (
	// ErrNotFound is returned when a package or repository does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for transport failures and unexpected statuses.
	ErrNetwork = errors.New("network error")

	// ErrRateLimited is returned when the upstream answers 429.
	ErrRateLimited = errors.New("rate limited by upstream")

	// ErrUpstreamDown is returned for 5xx responses and while a host's
	// circuit breaker is open.
	ErrUpstreamDown = errors.New("upstream registry unavailable")
)

// AsError wraps err in an [errs.Error] whose code matches the sentinel it
// carries. Cancellation passes through unchanged.
func AsError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	code := errs.ErrCodeNetwork
	switch {
	case errors.Is(err, ErrNotFound):
		code = errs.ErrCodePackageNotFound
	case errors.Is(err, ErrRateLimited):
		code = errs.ErrCodeRateLimited
	case errors.Is(err, ErrUpstreamDown):
		code = errs.ErrCodeUpstreamDown
	}
	return errs.Wrap(code, err, format, args...)
}

// RepoMetrics is the source-hosting view of a package: activity and
// popularity of its repository.
type RepoMetrics struct {
	RepoURL      string     `json:"repo_url"`
	Owner        string     `json:"owner"`
	Name         string     `json:"name"`
	Stars        int        `json:"stars"`
	OpenIssues   int        `json:"open_issues"`
	LastCommitAt *time.Time `json:"last_commit_at,omitempty"`
	License      string     `json:"license,omitempty"` // SPDX identifier
	Archived     bool       `json:"archived"`
}

// NewCache opens the shared response cache. An empty dir selects
// [httputil.DefaultDir].
func NewCache(dir string, ttl time.Duration) (*httputil.Cache, error) {
	return httputil.NewCache(dir, ttl)
}

var repoURLReplacer = strings.NewReplacer(
	"git@github.com:", "https://github.com/",
	"git://github.com/", "https://github.com/",
)

// NormalizeRepoURL rewrites git@, git:// and git+ forms to https and drops
// a trailing .git. Empty input stays empty.
func NormalizeRepoURL(raw string) string {
	if raw == "" {
		return ""
	}
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "git+")
	s = repoURLReplacer.Replace(s)
	return strings.TrimSuffix(s, ".git")
}

// ExtractRepoURL searches package URLs for a repository reference matched
// by re, which must capture owner and repo name. Candidates are tried in
// order: urls[k] for each k in keys, the remaining urls sorted by key, then
// fallbacks. Sponsor links are ignored.
func ExtractRepoURL(re *regexp.Regexp, urls map[string]string, keys []string, fallbacks ...string) (owner, repo string, ok bool) {
	match := func(u string) bool {
		if u == "" || strings.Contains(u, "/sponsors/") {
			return false
		}
		if m := re.FindStringSubmatch(u); len(m) >= 3 {
			owner = m[1]
			repo = strings.TrimSuffix(m[2], ".git")
			ok = owner != "" && repo != ""
			return ok
		}
		return false
	}

	tried := make(map[string]bool, len(keys))
	for _, key := range keys {
		tried[key] = true
		if match(urls[key]) {
			return
		}
	}
	for _, key := range slices.Sorted(maps.Keys(urls)) {
		if !tried[key] && match(urls[key]) {
			return
		}
	}
	for _, u := range fallbacks {
		if match(u) {
			return
		}
	}
	return "", "", false
}
