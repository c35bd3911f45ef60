package requirements

import "strings"

// Class says whether a declared dependency takes part in conflict checks.
type Class int

const (
	// Applicable dependencies are checked.
	Applicable Class = iota
	// SkipExtra dependencies belong to an optional extra.
	SkipExtra
	// SkipPlatform dependencies are gated on an OS or platform selector.
	SkipPlatform
	// Invalid declarations could not be parsed.
	Invalid
)

func (c Class) String() string {
	switch c {
	case Applicable:
		return "applicable"
	case SkipExtra:
		return "extra"
	case SkipPlatform:
		return "platform"
	default:
		return "invalid"
	}
}

// platformMarkers are the only platform selectors recognized. Anything else,
// python_version included, leaves the dependency applicable.
var platformMarkers = []string{"platform_system", "sys_platform"}

// Classify parses a declared dependency and decides whether it applies to
// the current install. The Requirement is valid for every class but Invalid,
// in which case err says why.
func Classify(s string) (Requirement, Class, error) {
	req, err := Parse(s)
	if err != nil {
		return Requirement{}, Invalid, err
	}
	return req, classifyMarker(req.Marker), nil
}

func classifyMarker(marker string) Class {
	if marker == "" {
		return Applicable
	}
	if strings.Contains(marker, "extra") {
		return SkipExtra
	}
	for _, m := range platformMarkers {
		if strings.Contains(marker, m) {
			return SkipPlatform
		}
	}
	return Applicable
}
