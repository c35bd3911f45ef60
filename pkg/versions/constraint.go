package versions

import (
	"fmt"
	"strings"
)

// ConstraintSet is a conjunction of specifiers for one dependency. The empty
// set is unconstrained and contains every version.
type ConstraintSet []Specifier

// ParseConstraintSet parses a comma-separated list of specifiers. Blank input
// yields an empty set. The first malformed specifier fails the whole set.
func ParseConstraintSet(s string) (ConstraintSet, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	cs := make(ConstraintSet, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			return nil, fmt.Errorf("%w: empty clause in %q", ErrInvalidSpecifier, s)
		}
		spec, err := ParseSpecifier(part)
		if err != nil {
			return nil, err
		}
		cs = append(cs, spec)
	}
	return cs, nil
}

// MustParseConstraintSet is like [ParseConstraintSet] but panics on error.
func MustParseConstraintSet(s string) ConstraintSet {
	cs, err := ParseConstraintSet(s)
	if err != nil {
		panic(err)
	}
	return cs
}

// Contains reports whether v satisfies every specifier in the set.
func (cs ConstraintSet) Contains(v Version) bool {
	for _, spec := range cs {
		if !spec.Matches(v) {
			return false
		}
	}
	return true
}

// IsEmpty reports whether the set places no constraint at all.
func (cs ConstraintSet) IsEmpty() bool { return len(cs) == 0 }

// Literals returns the version text of every specifier, operators stripped,
// in declaration order. Wildcards such as "1.4.*" are returned as written.
func (cs ConstraintSet) Literals() []string {
	out := make([]string, 0, len(cs))
	for _, spec := range cs {
		out = append(out, strings.TrimLeft(spec.Version, "><=!~"))
	}
	return out
}

// Pinned returns the version of the first exact "==" specifier. Wildcard
// pins such as "==1.4.*" name a range, not a version, and are skipped.
func (cs ConstraintSet) Pinned() (string, bool) {
	for _, spec := range cs {
		if spec.Op == OpEqual && !strings.Contains(spec.Version, "*") {
			return spec.Version, true
		}
	}
	return "", false
}

// String joins the specifiers with commas, e.g. ">=1.0,<2.0".
func (cs ConstraintSet) String() string {
	parts := make([]string, len(cs))
	for i, spec := range cs {
		parts[i] = spec.String()
	}
	return strings.Join(parts, ",")
}
