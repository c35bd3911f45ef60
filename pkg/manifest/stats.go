package manifest

import "github.com/matzehuels/depman/pkg/versions"

// Stats counts how tightly a manifest constrains its packages.
type Stats struct {
	Total    int `json:"total_packages"`
	Pinned   int `json:"pinned_versions"` // at least one "==" specifier
	Ranges   int `json:"version_ranges"`  // constrained, but not pinned
	Unpinned int `json:"unpinned"`        // no specifier at all
}

// ComputeStats classifies every declaration in s, duplicates included.
// Direct URL references count as pinned.
func ComputeStats(s *Set) Stats {
	var st Stats
	if s == nil {
		return st
	}
	for _, r := range s.Requirements {
		st.Total++
		switch {
		case r.URL != "":
			st.Pinned++
		case r.Constraints.IsEmpty():
			st.Unpinned++
		default:
			if hasEqual(r.Constraints) {
				st.Pinned++
			} else {
				st.Ranges++
			}
		}
	}
	return st
}

// PinnedPercent returns the share of pinned declarations, 0 for an empty
// manifest.
func (st Stats) PinnedPercent() float64 {
	if st.Total == 0 {
		return 0
	}
	return float64(st.Pinned) * 100 / float64(st.Total)
}

// hasEqual reports any "==" specifier, wildcard pins included.
func hasEqual(cs versions.ConstraintSet) bool {
	for _, spec := range cs {
		if spec.Op == versions.OpEqual {
			return true
		}
	}
	return false
}
