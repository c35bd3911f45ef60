// Package versions models PEP 440 versions, version specifiers, and
// constraint sets.
//
// It answers a single question: does version V satisfy constraint set S.
// There is no resolution logic here; see package conflict for the
// compatibility heuristic built on top.
//
// Ordering and matching are delegated to aquasecurity/go-pep440-version, so
// pre-releases sort before their final release and `~=` follows the
// compatible-release rules:
//
//	v, _ := versions.Parse("2.31.0")
//	cs, _ := versions.ParseConstraintSet(">=2.0,<3")
//	cs.Contains(v) // true
package versions

import (
	"errors"
	"fmt"
	"strings"

	pep440 "github.com/aquasecurity/go-pep440-version"
)

// ErrInvalidVersion is returned when a string is not a PEP 440 version.
// A valid version that merely fails a constraint is never an error.
var ErrInvalidVersion = errors.New("invalid version")

// Version is a parsed PEP 440 version. The zero value is not valid; obtain
// one through [Parse].
type Version struct {
	raw    string
	parsed pep440.Version
}

// Parse parses s as a PEP 440 version. Surrounding whitespace is ignored.
func Parse(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Version{}, fmt.Errorf("%w: empty string", ErrInvalidVersion)
	}
	v, err := pep440.Parse(s)
	if err != nil {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}
	return Version{raw: s, parsed: v}, nil
}

// MustParse is like [Parse] but panics on error. Intended for constants and
// tests.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// IsValid reports whether s parses as a PEP 440 version.
func IsValid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// Compare returns -1, 0 or +1 depending on whether v sorts before, equal to,
// or after other.
func (v Version) Compare(other Version) int {
	return v.parsed.Compare(other.parsed)
}

// LessThan reports whether v < other.
func (v Version) LessThan(other Version) bool { return v.Compare(other) < 0 }

// GreaterThan reports whether v > other.
func (v Version) GreaterThan(other Version) bool { return v.Compare(other) > 0 }

// Equal reports whether v and other are the same version under PEP 440
// normalization ("1.0" equals "1.0.0").
func (v Version) Equal(other Version) bool { return v.Compare(other) == 0 }

// String returns the version as it was written.
func (v Version) String() string { return v.raw }
