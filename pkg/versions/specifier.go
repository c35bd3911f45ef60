package versions

import (
	"errors"
	"fmt"
	"strings"

	pep440 "github.com/aquasecurity/go-pep440-version"
)

// ErrInvalidSpecifier is returned for a specifier with an unknown operator or
// a version the operator cannot accept.
var ErrInvalidSpecifier = errors.New("invalid specifier")

// Op is a version comparison operator.
type Op string

const (
	OpEqual        Op = "=="
	OpNotEqual     Op = "!="
	OpLess         Op = "<"
	OpLessEqual    Op = "<="
	OpGreater      Op = ">"
	OpGreaterEqual Op = ">="
	OpCompatible   Op = "~="
	OpArbitrary    Op = "==="
)

// opTokens is ordered longest first so that ">=" is not read as ">".
var opTokens = []Op{
	OpArbitrary,
	OpGreaterEqual,
	OpLessEqual,
	OpCompatible,
	OpNotEqual,
	OpEqual,
	OpGreater,
	OpLess,
}

// Specifier is one operator and version pair, e.g. ">=2.0".
type Specifier struct {
	Op      Op
	Version string

	check  pep440.Specifiers
	parsed bool
}

// ParseSpecifier parses a single specifier such as "~=1.4.2" or "==2.*".
func ParseSpecifier(s string) (Specifier, error) {
	s = strings.TrimSpace(s)
	for _, op := range opTokens {
		if !strings.HasPrefix(s, string(op)) {
			continue
		}
		ver := strings.TrimSpace(s[len(op):])
		if ver == "" {
			return Specifier{}, fmt.Errorf("%w: %q has no version", ErrInvalidSpecifier, s)
		}
		return newSpecifier(op, ver)
	}
	return Specifier{}, fmt.Errorf("%w: %q has no operator", ErrInvalidSpecifier, s)
}

func newSpecifier(op Op, ver string) (Specifier, error) {
	check, err := pep440.NewSpecifiers(string(op) + ver)
	if err != nil {
		return Specifier{}, fmt.Errorf("%w: %s%s", ErrInvalidSpecifier, op, ver)
	}
	return Specifier{Op: op, Version: ver, check: check, parsed: true}, nil
}

// Matches reports whether v satisfies the specifier. A Specifier built as a
// literal (without ParseSpecifier) is compiled on first use; one that does not
// compile matches nothing.
func (s Specifier) Matches(v Version) bool {
	if !s.parsed {
		compiled, err := newSpecifier(s.Op, s.Version)
		if err != nil {
			return false
		}
		s = compiled
	}
	return s.check.Check(v.parsed)
}

// String renders the specifier as written in a requirement, e.g. ">=2.0".
func (s Specifier) String() string {
	return string(s.Op) + s.Version
}
