// Package conflict decides whether a package can be added to a manifest
// without contradicting the versions already declared there.
//
// Compatibility between two constraint sets is decided by probing rather
// than by interval arithmetic. The probe set is every version literal
// mentioned by either side plus a fixed list of round versions; the sets
// are compatible iff some probe satisfies both. This is a heuristic. When
// the only shared versions lie strictly between probes (">1.0.0,<1.0.1" on
// both sides, for instance) it reports a conflict that a full resolver
// would not.
package conflict

import (
	"sort"

	"github.com/matzehuels/depman/pkg/versions"
)

// commonProbes are tried in addition to the literals of both sets.
var commonProbes = []string{
	"0.1.0", "0.5.0", "1.0.0", "1.5.0", "2.0.0", "2.5.0",
	"3.0.0", "4.0.0", "5.0.0", "10.0.0", "20.0.0", "50.0.0", "100.0.0",
}

var zeroVersion = versions.MustParse("0.0.0")

// Probes returns the candidate versions tested by [Compatible], sorted
// ascending. Literals that are not valid versions (wildcards, for example)
// are included and sort as 0.0.0; Compatible skips them.
func Probes(a, b versions.ConstraintSet) []string {
	seen := make(map[string]bool)
	var probes []string
	add := func(vs []string) {
		for _, v := range vs {
			if v != "" && !seen[v] {
				seen[v] = true
				probes = append(probes, v)
			}
		}
	}
	add(a.Literals())
	add(b.Literals())
	add(commonProbes)

	sortKey := func(s string) versions.Version {
		if v, err := versions.Parse(s); err == nil {
			return v
		}
		return zeroVersion
	}
	sort.SliceStable(probes, func(i, j int) bool {
		return sortKey(probes[i]).LessThan(sortKey(probes[j]))
	})
	return probes
}

// Witness returns the lowest probe satisfying both sets.
func Witness(a, b versions.ConstraintSet) (versions.Version, bool) {
	for _, p := range Probes(a, b) {
		v, err := versions.Parse(p)
		if err != nil {
			continue
		}
		if a.Contains(v) && b.Contains(v) {
			return v, true
		}
	}
	return versions.Version{}, false
}

// Compatible reports whether a and b appear to share a version. An empty
// set on either side is compatible with anything and is not probed.
func Compatible(a, b versions.ConstraintSet) bool {
	if a.IsEmpty() || b.IsEmpty() {
		return true
	}
	_, ok := Witness(a, b)
	return ok
}
