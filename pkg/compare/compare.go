// Package compare puts two packages side by side and picks the better
// maintained one.
package compare

import (
	"cmp"
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/depman/pkg/health"
)

// Tie is the winner of a row or comparison that neither side wins.
const Tie = "Tie"

// recentDays earns a package a freshness bonus in [Score].
const recentDays = 90

// HealthChecker produces health reports. *health.Checker implements it.
type HealthChecker interface {
	Check(ctx context.Context, name string) (*health.Report, error)
}

// Result holds both reports.
type Result struct {
	A, B *health.Report
}

// Row is one line of a comparison. Winner is a package name, [Tie], or
// empty for informational rows.
type Row struct {
	Metric string
	A, B   string
	Winner string
}

// Compare checks both packages concurrently. Either check failing fails the
// comparison.
func Compare(ctx context.Context, checker HealthChecker, a, b string) (*Result, error) {
	var res Result
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		res.A, err = checker.Check(ctx, a)
		return err
	})
	g.Go(func() (err error) {
		res.B, err = checker.Check(ctx, b)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &res, nil
}

// Rows renders the comparison. Dates are shown relative to now. GitHub rows
// appear when either side has GitHub data; contested GitHub rows only when
// both do.
func (r *Result) Rows(now time.Time) []Row {
	a, b := r.A, r.B
	rows := []Row{
		{Metric: "Latest Version", A: a.Version, B: b.Version},
		{Metric: "License", A: a.License, B: b.License},
		{
			Metric: "Last Release",
			A:      health.FormatRelative(a.ReleaseDate, now),
			B:      health.FormatRelative(b.ReleaseDate, now),
			Winner: r.pick(a.ReleaseDate.Compare(b.ReleaseDate)),
		},
		{
			Metric: "Health Status",
			A:      string(a.Status),
			B:      string(b.Status),
			Winner: r.pick(a.Status.Rank() - b.Status.Rank()),
		},
	}

	if !a.HasGitHub() && !b.HasGitHub() {
		return rows
	}
	rows = append(rows, Row{Metric: "Repository", A: repoOrNA(a), B: repoOrNA(b)})
	if !a.HasGitHub() || !b.HasGitHub() {
		return rows
	}

	rows = append(rows,
		Row{
			Metric: "Stars",
			A:      fmt.Sprint(a.Stars),
			B:      fmt.Sprint(b.Stars),
			Winner: r.pick(a.Stars - b.Stars),
		},
		Row{
			Metric: "Open Issues",
			A:      fmt.Sprint(a.OpenIssues),
			B:      fmt.Sprint(b.OpenIssues),
			Winner: r.pick(b.OpenIssues - a.OpenIssues),
		},
	)
	if a.LastCommit != nil && b.LastCommit != nil {
		rows = append(rows, Row{
			Metric: "Last Commit",
			A:      health.FormatRelative(*a.LastCommit, now),
			B:      health.FormatRelative(*b.LastCommit, now),
			Winner: r.pick(a.LastCommit.Compare(*b.LastCommit)),
		})
	}
	return rows
}

// Winner is the name of the higher scoring package, or [Tie].
func (r *Result) Winner() string {
	return r.pick(cmp.Compare(Score(r.A), Score(r.B)))
}

// Score rates a report: ten points per health rank, up to ten for stars (one
// per thousand), and five each for a release and a commit in the last 90
// days.
func Score(rep *health.Report) float64 {
	s := float64(rep.Status.Rank() * 10)
	if rep.HasGitHub() {
		s += min(float64(rep.Stars)/1000, 10)
	}
	if rep.DaysSinceRelease < recentDays {
		s += 5
	}
	if rep.HasGitHub() && rep.DaysSinceCommit != nil && *rep.DaysSinceCommit < recentDays {
		s += 5
	}
	return s
}

// pick names A for positive c, B for negative, [Tie] for zero.
func (r *Result) pick(c int) string {
	switch {
	case c > 0:
		return r.A.Name
	case c < 0:
		return r.B.Name
	}
	return Tie
}

func repoOrNA(r *health.Report) string {
	if r.HasGitHub() {
		return r.Repo
	}
	return "N/A"
}
