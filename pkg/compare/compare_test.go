package compare

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/depman/pkg/health"
)

var now = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func ago(days int) time.Time { return now.AddDate(0, 0, -days) }

func intp(n int) *int { return &n }

type checkerFunc func(ctx context.Context, name string) (*health.Report, error)

func (f checkerFunc) Check(ctx context.Context, name string) (*health.Report, error) {
	return f(ctx, name)
}

func reports(m map[string]*health.Report) HealthChecker {
	return checkerFunc(func(_ context.Context, name string) (*health.Report, error) {
		if r, ok := m[name]; ok {
			return r, nil
		}
		return nil, errors.New("not found: " + name)
	})
}

func requestsReport() *health.Report {
	commit := ago(2)
	return &health.Report{
		Name: "requests", Version: "2.31.0", License: "Apache 2.0",
		ReleaseDate: ago(40), DaysSinceRelease: 40,
		Repo: "psf/requests", Stars: 51000, OpenIssues: 250,
		LastCommit: &commit, DaysSinceCommit: intp(2),
		Status: health.Active,
	}
}

func httpxReport() *health.Report {
	commit := ago(120)
	return &health.Report{
		Name: "httpx", Version: "0.27.0", License: "BSD",
		ReleaseDate: ago(200), DaysSinceRelease: 200,
		Repo: "encode/httpx", Stars: 12000, OpenIssues: 80,
		LastCommit: &commit, DaysSinceCommit: intp(120),
		Status: health.Slow,
	}
}

func TestCompare(t *testing.T) {
	c := reports(map[string]*health.Report{"requests": requestsReport(), "httpx": httpxReport()})

	res, err := Compare(context.Background(), c, "requests", "httpx")
	require.NoError(t, err)

	want := []Row{
		{Metric: "Latest Version", A: "2.31.0", B: "0.27.0"},
		{Metric: "License", A: "Apache 2.0", B: "BSD"},
		{Metric: "Last Release", A: "1 month ago", B: "6 months ago", Winner: "requests"},
		{Metric: "Health Status", A: "Active", B: "Slow", Winner: "requests"},
		{Metric: "Repository", A: "psf/requests", B: "encode/httpx"},
		{Metric: "Stars", A: "51000", B: "12000", Winner: "requests"},
		{Metric: "Open Issues", A: "250", B: "80", Winner: "httpx"},
		{Metric: "Last Commit", A: "2 days ago", B: "4 months ago", Winner: "requests"},
	}
	if diff := cmp.Diff(want, res.Rows(now)); diff != "" {
		t.Errorf("Rows() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "requests", res.Winner())
}

func TestCompare_Error(t *testing.T) {
	c := reports(map[string]*health.Report{"requests": requestsReport()})
	_, err := Compare(context.Background(), c, "requests", "nope")
	assert.ErrorContains(t, err, "not found: nope")
}

func TestRows_OneSidedGitHub(t *testing.T) {
	b := httpxReport()
	b.Repo, b.LastCommit, b.DaysSinceCommit = "", nil, nil

	res := &Result{A: requestsReport(), B: b}
	rows := res.Rows(now)
	require.Len(t, rows, 5)
	assert.Equal(t, Row{Metric: "Repository", A: "psf/requests", B: "N/A"}, rows[4])
}

func TestRows_NoGitHub(t *testing.T) {
	a, b := requestsReport(), httpxReport()
	a.Repo, b.Repo = "", ""
	assert.Len(t, (&Result{A: a, B: b}).Rows(now), 4)
}

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		r    *health.Report
		want float64
	}{
		{"active, popular, fresh", requestsReport(), 30 + 10 + 5 + 5},
		{"slow, stale", httpxReport(), 20 + 10},
		{"zombie without github", &health.Report{Status: health.Zombie, DaysSinceRelease: 800}, 10},
		{"few stars", &health.Report{Status: health.Active, Repo: "a/b", Stars: 2500, DaysSinceRelease: 300}, 32.5},
		{"commit ignored without github", &health.Report{Status: health.Slow, DaysSinceRelease: 200, DaysSinceCommit: intp(1)}, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Score(tt.r), 1e-9)
		})
	}
}

func TestWinner_Tie(t *testing.T) {
	a := &health.Report{Name: "a", Status: health.Active, DaysSinceRelease: 10}
	b := &health.Report{Name: "b", Status: health.Active, DaysSinceRelease: 20}
	assert.Equal(t, Tie, (&Result{A: a, B: b}).Winner())
}
