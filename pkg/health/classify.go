// Package health grades how actively a package is maintained.
//
// [Classify] is the policy: recent commits mean Active, otherwise recent
// releases do. [Checker] gathers the inputs from PyPI and GitHub and produces
// a [Report].
package health

import (
	"fmt"
	"time"
)

// Status is the maintenance grade of a package.
type Status string

const (
	Active Status = "Active"
	Slow   Status = "Slow"
	Zombie Status = "Zombie"
)

// Rank orders statuses for comparison: Active 3, Slow 2, Zombie 1.
func (s Status) Rank() int {
	switch s {
	case Active:
		return 3
	case Slow:
		return 2
	case Zombie:
		return 1
	}
	return 0
}

// Policy thresholds in days. They are fixed, not configuration.
const (
	commitActiveDays  = 90
	commitSlowDays    = 180
	releaseActiveDays = 180
	releaseSlowDays   = 365
)

var recommendations = map[Status]string{
	Active: "Active & Healthy",
	Slow:   "Moderately Active",
	Zombie: "Low Activity - Consider Alternatives",
}

// Recommendation is the advice shown next to s.
func (s Status) Recommendation() string { return recommendations[s] }

// Classify grades a package from the days since its last commit, when known,
// and otherwise from the days since its last release.
func Classify(daysSinceCommit *int, daysSinceRelease int) (Status, string) {
	var s Status
	switch {
	case daysSinceCommit != nil && *daysSinceCommit < commitActiveDays:
		s = Active
	case daysSinceCommit != nil && *daysSinceCommit < commitSlowDays:
		s = Slow
	case daysSinceCommit != nil:
		s = Zombie
	case daysSinceRelease < releaseActiveDays:
		s = Active
	case daysSinceRelease < releaseSlowDays:
		s = Slow
	default:
		s = Zombie
	}
	return s, s.Recommendation()
}

// DaysSince counts whole days from t to now, never negative.
func DaysSince(t, now time.Time) int {
	d := int(now.Sub(t) / (24 * time.Hour))
	return max(d, 0)
}

// FormatRelative renders t relative to now: "today", "3 days ago",
// "2 months ago", "1 year ago". Months are 30 days and years 365.
func FormatRelative(t, now time.Time) string {
	days := DaysSince(t, now)
	switch {
	case days == 0:
		return "today"
	case days == 1:
		return "1 day ago"
	case days < 30:
		return fmt.Sprintf("%d days ago", days)
	case days < 60:
		return "1 month ago"
	case days < 365:
		return fmt.Sprintf("%d months ago", days/30)
	case days < 730:
		return "1 year ago"
	default:
		return fmt.Sprintf("%d years ago", days/365)
	}
}
