// Package audit runs health checks over every package a manifest declares.
//
// Checks run concurrently, bounded by [Auditor.Concurrency]. A failure for
// one package is recorded on its [Result] and never aborts the run, so an
// audit always returns one result per declared package, in manifest order.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/package-url/packageurl-go"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/depman/pkg/health"
	"github.com/matzehuels/depman/pkg/manifest"
	"github.com/matzehuels/depman/pkg/requirements"
	"github.com/matzehuels/depman/pkg/versions"
)

// DefaultConcurrency bounds in-flight health checks when none is set.
const DefaultConcurrency = 5

// HealthChecker produces health reports. *health.Checker implements it.
type HealthChecker interface {
	Check(ctx context.Context, name string) (*health.Report, error)
}

// Result is the audit of one declared package.
type Result struct {
	Name     string
	Current  string // first "==" version, empty when not pinned
	Latest   string
	Outdated bool
	PURL     string
	Report   *health.Report
	Err      error
}

// NeedsAttention reports whether r is anything other than a current,
// actively maintained package.
func (r Result) NeedsAttention() bool {
	return r.Err != nil || r.Outdated || r.Report == nil || r.Report.Status != health.Active
}

// MarshalJSON flattens the result for machine-readable output.
func (r Result) MarshalJSON() ([]byte, error) {
	out := struct {
		Name     string         `json:"name"`
		Current  string         `json:"current_version,omitempty"`
		Latest   string         `json:"latest_version,omitempty"`
		Outdated bool           `json:"outdated"`
		PURL     string         `json:"purl,omitempty"`
		Health   *health.Report `json:"health,omitempty"`
		Error    string         `json:"error,omitempty"`
	}{
		Name:     r.Name,
		Current:  r.Current,
		Latest:   r.Latest,
		Outdated: r.Outdated,
		PURL:     r.PURL,
		Health:   r.Report,
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}

// Summary aggregates a run.
type Summary struct {
	Total           int `json:"total_packages"`
	Healthy         int `json:"healthy_packages"`
	Slow            int `json:"slow_packages"`
	Zombie          int `json:"zombie_packages"`
	Outdated        int `json:"outdated_packages"`
	Errors          int `json:"error_packages"`
	WithGitHub      int `json:"packages_with_github"`
	TotalStars      int `json:"total_stars"`
	TotalOpenIssues int `json:"total_open_issues"`
}

// Auditor audits manifests.
type Auditor struct {
	Checker     HealthChecker
	Concurrency int
	Logger      *log.Logger
}

func (a *Auditor) logger() *log.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return log.Default()
}

// Run audits each effective requirement of set. Only cancellation of ctx
// stops it early; the remaining packages then carry ctx.Err().
func (a *Auditor) Run(ctx context.Context, set *manifest.Set) ([]Result, Summary) {
	reqs := set.Effective()
	if len(reqs) == 0 {
		a.logger().Warn("no requirements to audit", "file", set.Path)
		return nil, Summary{}
	}

	limit := a.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	start := time.Now()
	a.logger().Info("auditing packages", "count", len(reqs), "concurrency", limit)

	results := make([]Result, len(reqs))
	g := new(errgroup.Group)
	g.SetLimit(limit)
	for i, req := range reqs {
		g.Go(func() error {
			results[i] = a.audit(ctx, req)
			return nil
		})
	}
	_ = g.Wait()

	a.logger().Debug("audit finished", "elapsed", time.Since(start).Round(time.Millisecond))
	return results, Summarize(results)
}

func (a *Auditor) audit(ctx context.Context, req requirements.Requirement) Result {
	l := a.logger()
	current, _ := req.Constraints.Pinned()
	res := Result{Name: req.Name, Current: current}

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	l.Debug("auditing package", "package", req.Name)
	report, err := a.Checker.Check(ctx, req.Name)
	if err != nil {
		l.Error("audit failed", "package", req.Name, "err", err)
		res.Err = err
		return res
	}

	res.Report = report
	res.Latest = report.Version
	res.PURL = PURL(req.Name, current)
	if current != "" && res.Latest != "" {
		cur, errCur := versions.Parse(current)
		latest, errLatest := versions.Parse(res.Latest)
		if errCur == nil && errLatest == nil {
			res.Outdated = cur.LessThan(latest)
		} else {
			l.Warn("could not compare versions", "package", req.Name, "current", current, "latest", res.Latest)
		}
	}
	return res
}

// Summarize counts results by status.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Err != nil {
			s.Errors++
			continue
		}
		if r.Report == nil {
			continue
		}
		switch r.Report.Status {
		case health.Active:
			s.Healthy++
		case health.Slow:
			s.Slow++
		case health.Zombie:
			s.Zombie++
		}
		if r.Report.HasGitHub() {
			s.WithGitHub++
			s.TotalStars += r.Report.Stars
			s.TotalOpenIssues += r.Report.OpenIssues
		}
		if r.Outdated {
			s.Outdated++
		}
	}
	return s
}

// Upgrade is an outdated package with its pinned and latest versions.
type Upgrade struct {
	Name    string `json:"name"`
	Current string `json:"current_version"`
	Latest  string `json:"latest_version"`
}

// Outdated picks the outdated results, in order.
func Outdated(results []Result) []Upgrade {
	var out []Upgrade
	for _, r := range results {
		if r.Outdated && r.Current != "" && r.Latest != "" {
			out = append(out, Upgrade{Name: r.Name, Current: r.Current, Latest: r.Latest})
		}
	}
	return out
}

// PURL returns the package URL of a PyPI package, for example
// "pkg:pypi/requests@2.31.0". Version may be empty.
func PURL(name, version string) string {
	return packageurl.NewPackageURL(packageurl.TypePyPi, "", name, version, nil, "").ToString()
}
