package manifest

import (
	"fmt"
	"slices"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/depman/pkg/requirements"
	"github.com/matzehuels/depman/pkg/versions"
)

type pyprojectFile struct {
	Project struct {
		Name                 string              `toml:"name"`
		Dependencies         []string            `toml:"dependencies"`
		OptionalDependencies map[string][]string `toml:"optional-dependencies"`
	} `toml:"project"`
}

func parsePyproject(data []byte, groups []string) (*Set, error) {
	var doc pyprojectFile
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	s := &Set{Format: FormatPyproject}
	addAll := func(decls []string) {
		for _, decl := range decls {
			req, err := requirements.Parse(decl)
			if err != nil {
				s.warn(0, decl, err)
				continue
			}
			s.Add(req)
		}
	}

	addAll(doc.Project.Dependencies)

	names := make([]string, 0, len(doc.Project.OptionalDependencies))
	for name := range doc.Project.OptionalDependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if slices.Contains(groups, "*") || slices.Contains(groups, name) {
			addAll(doc.Project.OptionalDependencies[name])
		}
	}
	return s, nil
}

type poetryLockFile struct {
	Packages []struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	} `toml:"package"`
}

func parsePoetryLock(data []byte) (*Set, error) {
	var lock poetryLockFile
	if err := toml.Unmarshal(data, &lock); err != nil {
		return nil, err
	}

	s := &Set{Format: FormatPoetryLock}
	for _, pkg := range lock.Packages {
		decl := pkg.Name + "==" + pkg.Version
		cs, err := versions.ParseConstraintSet("==" + pkg.Version)
		if err != nil || pkg.Name == "" {
			s.warn(0, decl, fmt.Errorf("%w: locked package", requirements.ErrInvalidRequirement))
			continue
		}
		s.Add(requirements.Requirement{Raw: decl, Name: pkg.Name, Constraints: cs})
	}
	return s, nil
}
