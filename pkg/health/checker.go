package health

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/depman/pkg/errors"
	"github.com/matzehuels/depman/pkg/integrations"
	"github.com/matzehuels/depman/pkg/integrations/github"
	"github.com/matzehuels/depman/pkg/integrations/pypi"
)

// PackageFetcher reads registry metadata. *pypi.Client implements it.
type PackageFetcher interface {
	FetchPackage(ctx context.Context, name string, refresh bool) (*pypi.PackageInfo, error)
}

// RepoFetcher reads repository metrics. *github.Client implements it.
type RepoFetcher interface {
	Fetch(ctx context.Context, owner, repo string, refresh bool) (*integrations.RepoMetrics, error)
}

// Report is the health of one package.
type Report struct {
	Name             string            `json:"name"`
	Version          string            `json:"version"`
	Summary          string            `json:"summary,omitempty"`
	License          string            `json:"license"`
	ProjectURLs      map[string]string `json:"project_urls,omitempty"`
	ReleaseDate      time.Time         `json:"release_date"`
	DaysSinceRelease int               `json:"days_since_release"`

	// GitHub fields are zero when no repository was found or it could not
	// be read.
	Repo            string     `json:"repo,omitempty"`
	RepoURL         string     `json:"repo_url,omitempty"`
	LastCommit      *time.Time `json:"last_commit,omitempty"`
	DaysSinceCommit *int       `json:"days_since_commit,omitempty"`
	Stars           int        `json:"stars"`
	OpenIssues      int        `json:"open_issues"`
	Archived        bool       `json:"archived,omitempty"`

	Status         Status `json:"status"`
	Recommendation string `json:"recommendation"`
}

// HasGitHub reports whether repository metrics are present.
func (r *Report) HasGitHub() bool { return r.Repo != "" }

// Checker builds health reports. PyPI is required; with a nil GitHub the
// grade rests on release dates alone.
type Checker struct {
	PyPI   PackageFetcher
	GitHub RepoFetcher
	Logger *log.Logger
	// Now defaults to time.Now.
	Now func() time.Time
	// Refresh bypasses response caches.
	Refresh bool
}

func (c *Checker) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.Default()
}

func (c *Checker) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Check reports on name. Registry failures are returned as coded errors
// (PACKAGE_NOT_FOUND for unknown projects); GitHub failures are logged and
// the report is graded without them.
func (c *Checker) Check(ctx context.Context, name string) (*Report, error) {
	l := c.logger()
	now := c.now()

	info, err := c.PyPI.FetchPackage(ctx, name, c.Refresh)
	if errors.Is(err, integrations.ErrNotFound) {
		return nil, errs.Wrap(errs.ErrCodePackageNotFound, err, "package %q not found on PyPI", name)
	}
	if err != nil {
		return nil, integrations.AsError(err, "could not fetch %q from PyPI", name)
	}
	if info == nil {
		return nil, errs.New(errs.ErrCodeInternal, "no metadata for %q", name)
	}

	r := &Report{
		Name:        info.Name,
		Version:     info.Version,
		Summary:     info.Summary,
		License:     info.License,
		ProjectURLs: info.ProjectURLs,
		ReleaseDate: now,
	}
	if r.Name == "" {
		r.Name = name
	}
	if r.License == "" {
		r.License = "Unknown"
	}
	if info.ReleaseDate != nil {
		r.ReleaseDate = *info.ReleaseDate
	} else {
		l.Debug("no upload time on PyPI, treating release as today", "package", name)
	}
	r.DaysSinceRelease = DaysSince(r.ReleaseDate, now)

	if c.GitHub != nil {
		c.addGitHub(ctx, r, info, now)
	}

	r.Status, r.Recommendation = Classify(r.DaysSinceCommit, r.DaysSinceRelease)
	return r, nil
}

func (c *Checker) addGitHub(ctx context.Context, r *Report, info *pypi.PackageInfo, now time.Time) {
	l := c.logger()

	owner, repo, ok := github.ExtractRepo(info.ProjectURLs,
		info.HomePage, info.ProjectURL, info.PackageURL, info.DownloadURL)
	if !ok {
		l.Debug("no GitHub repository found", "package", r.Name)
		return
	}

	m, err := c.GitHub.Fetch(ctx, owner, repo, c.Refresh)
	if err != nil {
		l.Warn("could not fetch GitHub data", "repo", owner+"/"+repo, "err", err)
		return
	}

	r.Repo = owner + "/" + repo
	r.RepoURL = m.RepoURL
	r.Stars = m.Stars
	r.OpenIssues = m.OpenIssues
	r.Archived = m.Archived
	if m.LastCommitAt != nil {
		t := *m.LastCommitAt
		days := DaysSince(t, now)
		r.LastCommit = &t
		r.DaysSinceCommit = &days
	}
}
