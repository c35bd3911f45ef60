// Package manifest loads, inspects and edits Python dependency manifests.
//
// Three formats are read:
//   - requirements*.txt (and any other .txt): one declaration per line
//   - pyproject.toml: [project].dependencies and optional-dependencies
//   - poetry.lock: every locked package, pinned with ==
//
// Only requirements files are edited ([Append], [Remove]).
//
// Loading never fails on a malformed entry. Each bad entry is skipped and
// recorded as a [Warning] on the returned [Set], so one typo does not hide
// the rest of the file.
package manifest

import (
	"fmt"

	"github.com/matzehuels/depman/pkg/requirements"
)

// Warning describes an entry that was skipped while loading.
type Warning struct {
	Line int    // 1-based line number, 0 when not line oriented
	Text string // offending entry
	Err  error
}

func (w Warning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("line %d: %s (%v)", w.Line, w.Text, w.Err)
	}
	return fmt.Sprintf("%s (%v)", w.Text, w.Err)
}

// Set is the ordered list of requirements declared by a manifest, indexed by
// normalized name. When a name is declared twice the later declaration wins
// lookups; both stay in Requirements.
type Set struct {
	Path         string
	Format       Format
	Requirements []requirements.Requirement
	Warnings     []Warning

	index map[string]int
}

// NewSet builds a Set from already parsed requirements.
func NewSet(reqs ...requirements.Requirement) *Set {
	s := &Set{}
	for _, r := range reqs {
		s.Add(r)
	}
	return s
}

// Add appends r and points its normalized name at it.
func (s *Set) Add(r requirements.Requirement) {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	s.Requirements = append(s.Requirements, r)
	s.index[r.Key()] = len(s.Requirements) - 1
}

// Lookup returns the effective requirement for name, which may be spelled
// in any case or separator style.
func (s *Set) Lookup(name string) (requirements.Requirement, bool) {
	if s == nil || s.index == nil {
		return requirements.Requirement{}, false
	}
	i, ok := s.index[requirements.Normalize(name)]
	if !ok {
		return requirements.Requirement{}, false
	}
	return s.Requirements[i], true
}

// Has reports whether name is declared.
func (s *Set) Has(name string) bool {
	_, ok := s.Lookup(name)
	return ok
}

// Len returns the number of declarations, duplicates included.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Requirements)
}

// Effective returns one requirement per normalized name, in order of first
// declaration, each being the last declaration for that name.
func (s *Set) Effective() []requirements.Requirement {
	if s == nil {
		return nil
	}
	seen := make(map[string]bool, len(s.index))
	out := make([]requirements.Requirement, 0, len(s.index))
	for _, r := range s.Requirements {
		key := r.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s.Requirements[s.index[key]])
	}
	return out
}

func (s *Set) warn(line int, text string, err error) {
	s.Warnings = append(s.Warnings, Warning{Line: line, Text: text, Err: err})
}
