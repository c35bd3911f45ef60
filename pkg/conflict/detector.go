package conflict

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depman/pkg/requirements"
	"github.com/matzehuels/depman/pkg/versions"
)

// Kind distinguishes the two ways an addition can conflict.
type Kind int

const (
	// KindSelf means the manifest already constrains the package being added
	// and its version falls outside that constraint.
	KindSelf Kind = iota
	// KindDependency means a declared dependency of the package being added
	// cannot be satisfied together with the manifest's entry for it.
	KindDependency
)

// Conflict is one reason not to add a package.
type Conflict struct {
	Kind      Kind
	Package   string                   // package being added
	Version   string                   // its version
	Required  requirements.Requirement // dependency it declares (KindDependency)
	Installed requirements.Requirement // manifest entry it collides with
}

func (c Conflict) String() string {
	if c.Kind == KindSelf {
		return fmt.Sprintf("Package '%s' version %s conflicts with existing requirement: %s",
			c.Package, c.Version, c.Installed)
	}
	return fmt.Sprintf("'%s' requires '%s' but you have '%s' installed",
		c.Package, c.Required, c.Installed)
}

// Lookup finds the manifest entry for a package name in any spelling.
// *manifest.Set implements it.
type Lookup interface {
	Lookup(name string) (requirements.Requirement, bool)
}

// Detector finds conflicts for a prospective addition. The zero value logs
// to log.Default().
type Detector struct {
	Logger *log.Logger
}

func (d Detector) logger() *log.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return log.Default()
}

// Check returns every conflict between adding name at version, whose
// declared dependencies are deps, and the entries in local. The self
// conflict, if any, comes first; dependency conflicts follow in the order
// of deps. Dependencies gated on an extra or a platform selector are
// ignored, and so are declarations that do not parse.
//
// Check has no side effects besides logging, and the same inputs always
// yield the same result.
func (d Detector) Check(name, version string, deps []string, local Lookup) []Conflict {
	l := d.logger()
	var conflicts []Conflict

	if existing, ok := local.Lookup(name); ok && !existing.Constraints.IsEmpty() {
		v, err := versions.Parse(version)
		switch {
		case err != nil:
			l.Error("cannot check version against existing requirement", "package", name, "version", version, "err", err)
		case !existing.Constraints.Contains(v):
			l.Debug("version conflict", "package", name, "version", version, "existing", existing.String())
			conflicts = append(conflicts, Conflict{
				Kind:      KindSelf,
				Package:   name,
				Version:   version,
				Installed: existing,
			})
		}
	}

	for _, raw := range deps {
		dep, class, err := requirements.Classify(raw)
		switch class {
		case requirements.Invalid:
			l.Warn("failed to parse dependency", "dependency", raw, "err", err)
			continue
		case requirements.SkipExtra:
			l.Debug("skipping optional dependency", "dependency", raw)
			continue
		case requirements.SkipPlatform:
			l.Debug("skipping platform-specific dependency", "dependency", raw)
			continue
		}

		installed, ok := local.Lookup(dep.Name)
		if !ok {
			continue
		}
		if Compatible(dep.Constraints, installed.Constraints) {
			continue
		}
		l.Debug("conflict detected", "dependency", dep.Name,
			"required", dep.Constraints.String(), "installed", installed.Constraints.String())
		conflicts = append(conflicts, Conflict{
			Kind:      KindDependency,
			Package:   name,
			Version:   version,
			Required:  dep,
			Installed: installed,
		})
	}

	return conflicts
}

// FindConflicts is [Detector.Check] rendered as messages. An empty result
// means the package is safe to add.
func (d Detector) FindConflicts(name, version string, deps []string, local Lookup) []string {
	conflicts := d.Check(name, version, deps, local)
	msgs := make([]string, len(conflicts))
	for i, c := range conflicts {
		msgs[i] = c.String()
	}
	return msgs
}
