// Package requirements parses PEP 508 dependency declarations of the form
//
//	name[extras] specifiers ; marker
//
// as found in requirements.txt lines, pyproject.toml dependency arrays and
// PyPI requires_dist metadata.
//
// Parsing is deliberately narrow. Markers are kept as text and only inspected
// for the substrings that decide whether a dependency applies at all (see
// [Classify]); they are never evaluated.
package requirements

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/matzehuels/depman/pkg/versions"
)

// ErrInvalidRequirement is returned when a declaration does not follow the
// name[extras] specifiers ; marker grammar.
var ErrInvalidRequirement = errors.New("invalid requirement")

var (
	nameRE      = regexp.MustCompile(`^([A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?)`)
	separatorRE = regexp.MustCompile(`[-_.]+`)
)

// Requirement is one parsed dependency declaration.
type Requirement struct {
	Raw         string                 // declaration as written, trimmed
	Name        string                 // name as written
	Extras      []string               // requested extras, e.g. ["socks"]
	Constraints versions.ConstraintSet // empty when unconstrained
	URL         string                 // direct reference after "@", if any
	Marker      string                 // environment marker text after ";"
}

// Parse parses a single dependency declaration.
func Parse(s string) (Requirement, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Requirement{}, fmt.Errorf("%w: empty declaration", ErrInvalidRequirement)
	}

	body, marker, hasMarker := strings.Cut(raw, ";")
	marker = strings.TrimSpace(marker)
	if hasMarker && marker == "" {
		return Requirement{}, fmt.Errorf("%w: %q has an empty marker", ErrInvalidRequirement, raw)
	}
	body = strings.TrimSpace(body)

	m := nameRE.FindString(body)
	if m == "" {
		return Requirement{}, fmt.Errorf("%w: %q does not start with a package name", ErrInvalidRequirement, raw)
	}
	req := Requirement{Raw: raw, Name: m, Marker: marker}
	rest := strings.TrimSpace(body[len(m):])

	if strings.HasPrefix(rest, "[") {
		end := strings.Index(rest, "]")
		if end < 0 {
			return Requirement{}, fmt.Errorf("%w: %q has an unterminated extras list", ErrInvalidRequirement, raw)
		}
		for _, extra := range strings.Split(rest[1:end], ",") {
			if extra = strings.TrimSpace(extra); extra != "" {
				req.Extras = append(req.Extras, extra)
			}
		}
		rest = strings.TrimSpace(rest[end+1:])
	}

	if url, ok := strings.CutPrefix(rest, "@"); ok {
		req.URL = strings.TrimSpace(url)
		if req.URL == "" {
			return Requirement{}, fmt.Errorf("%w: %q has an empty direct reference", ErrInvalidRequirement, raw)
		}
		return req, nil
	}

	if strings.HasPrefix(rest, "(") && strings.HasSuffix(rest, ")") {
		rest = rest[1 : len(rest)-1]
	}
	cs, err := versions.ParseConstraintSet(rest)
	if err != nil {
		return Requirement{}, fmt.Errorf("%w: %q: %v", ErrInvalidRequirement, raw, err)
	}
	req.Constraints = cs
	return req, nil
}

// Key returns the normalized name used for every lookup.
func (r Requirement) Key() string { return Normalize(r.Name) }

// String renders the requirement in canonical form, e.g.
// `requests[socks]>=2.0,<3; python_version >= "3.8"`.
func (r Requirement) String() string {
	var b strings.Builder
	b.WriteString(r.Name)
	if len(r.Extras) > 0 {
		b.WriteString("[" + strings.Join(r.Extras, ",") + "]")
	}
	if r.URL != "" {
		b.WriteString(" @ " + r.URL)
	} else {
		b.WriteString(r.Constraints.String())
	}
	if r.Marker != "" {
		b.WriteString("; " + r.Marker)
	}
	return b.String()
}

// Normalize folds a distribution name to its PEP 503 form: lowercase, with
// every run of "-", "_" and "." replaced by a single "-". Two names refer to
// the same package iff their normalized forms are equal.
func Normalize(name string) string {
	return separatorRE.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}
