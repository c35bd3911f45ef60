package conflict

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/depman/pkg/manifest"
	"github.com/matzehuels/depman/pkg/versions"
)

func quietDetector() Detector {
	return Detector{Logger: log.New(io.Discard)}
}

func localSet(t *testing.T, lines ...string) *manifest.Set {
	t.Helper()
	s, err := manifest.ParseRequirements(strings.NewReader(strings.Join(lines, "\n")))
	require.NoError(t, err)
	require.Empty(t, s.Warnings)
	return s
}

func TestCompatible(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"empty left", "", "==1.0", true},
		{"empty right", ">=2", "", true},
		{"both empty", "", "", true},
		{"pin inside range", "==2.0.0", ">=1.0,<3", true},
		{"pin below range", "==2.0.0", ">=2.5.0", false},
		{"overlapping ranges", "~=1.4", ">=1.0,<2.0", true},
		{"literal probe", ">=1.5,<1.9", ">=1.0,<2.0", true},
		{"disjoint ranges", "<1.0", ">=2.0", false},
		{"excluded pin", "!=3.0.0", "==3.0.0", false},
		{"large bound", ">=60", "<70", true},
		{"wildcard literal", "==2.*", ">=2.0", true},
		{"narrow open interval", ">1.0.0,<1.0.1", ">1.0.0,<1.0.1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := versions.MustParseConstraintSet(tt.a)
			b := versions.MustParseConstraintSet(tt.b)
			assert.Equal(t, tt.want, Compatible(a, b))
			assert.Equal(t, tt.want, Compatible(b, a), "not symmetric")
		})
	}
}

func TestProbes(t *testing.T) {
	a := versions.MustParseConstraintSet(">=1.7,<3")
	b := versions.MustParseConstraintSet("==2.*,!=1.0.0")

	got := Probes(a, b)
	want := []string{
		"2.*",
		"0.1.0", "0.5.0", "1.0.0", "1.5.0", "1.7", "2.0.0", "2.5.0",
		"3", "3.0.0", "4.0.0", "5.0.0", "10.0.0", "20.0.0", "50.0.0", "100.0.0",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Probes mismatch (-want +got):\n%s", diff)
	}
}

func TestWitness(t *testing.T) {
	v, ok := Witness(
		versions.MustParseConstraintSet(">=1.2"),
		versions.MustParseConstraintSet("<4"),
	)
	require.True(t, ok)
	assert.Equal(t, "1.2", v.String())

	_, ok = Witness(
		versions.MustParseConstraintSet("<1"),
		versions.MustParseConstraintSet(">1"),
	)
	assert.False(t, ok)
}

func TestDetector_DependencyConflict(t *testing.T) {
	local := localSet(t, "requests==2.0.0")

	got := quietDetector().FindConflicts("newpkg", "1.0.0", []string{"requests>=2.5.0"}, local)
	want := []string{"'newpkg' requires 'requests>=2.5.0' but you have 'requests==2.0.0' installed"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FindConflicts mismatch (-want +got):\n%s", diff)
	}
}

func TestDetector_OverlappingRangesAreCompatible(t *testing.T) {
	local := localSet(t, "flask>=1.0,<2.0")
	got := quietDetector().FindConflicts("ext", "0.3", []string{"flask>=1.5,<1.9"}, local)
	assert.Empty(t, got)
}

func TestDetector_SelfConflict(t *testing.T) {
	local := localSet(t, "mypkg==2.0.0")

	conflicts := quietDetector().Check("mypkg", "3.0.0", nil, local)
	require.Len(t, conflicts, 1)
	assert.Equal(t, KindSelf, conflicts[0].Kind)
	assert.Equal(t,
		"Package 'mypkg' version 3.0.0 conflicts with existing requirement: mypkg==2.0.0",
		conflicts[0].String())

	assert.Empty(t, quietDetector().Check("mypkg", "2.0.0", nil, local))
}

func TestDetector_SelfConflictUsesNormalizedName(t *testing.T) {
	local := localSet(t, "My_Pkg<2")
	assert.Len(t, quietDetector().Check("my-pkg", "2.1", nil, local), 1)
}

func TestDetector_InvalidVersionSkipsSelfCheck(t *testing.T) {
	var buf bytes.Buffer
	d := Detector{Logger: log.New(&buf)}

	local := localSet(t, "mypkg==2.0.0")
	assert.Empty(t, d.Check("mypkg", "not-a-version", nil, local))
	assert.Contains(t, buf.String(), "cannot check version")
}

func TestDetector_SkipsMarkedDependencies(t *testing.T) {
	local := localSet(t, "pytest==5.0", "pywin32==1.0", "colorama==0.1")
	deps := []string{
		`pytest>=6.0; extra == "test"`,
		`pywin32>=300; sys_platform == "win32"`,
		`colorama>=0.4; platform_system == "Windows"`,
	}
	assert.Empty(t, quietDetector().Check("tool", "1.0", deps, local))
}

func TestDetector_UnrecognizedMarkerStillApplies(t *testing.T) {
	local := localSet(t, "tomli==1.0")
	deps := []string{`tomli>=2.0; python_version < "3.11"`}
	assert.Len(t, quietDetector().Check("tool", "1.0", deps, local), 1)
}

func TestDetector_InvalidDependencyIsLoggedAndSkipped(t *testing.T) {
	var buf bytes.Buffer
	d := Detector{Logger: log.New(&buf)}

	local := localSet(t, "requests==1.0")
	got := d.Check("tool", "1.0", []string{"requests >>>= nonsense", "requests>=2"}, local)
	require.Len(t, got, 1)
	assert.Equal(t, "requests", got[0].Required.Name)
	assert.Contains(t, buf.String(), "failed to parse dependency")
}

func TestDetector_Ordering(t *testing.T) {
	local := localSet(t, "tool==0.5", "a==1.0", "b==1.0", "c==1.0")
	deps := []string{"c>=2", "a>=2", "unrelated>=1", "b<1"}

	got := quietDetector().Check("tool", "1.0", deps, local)
	require.Len(t, got, 4)

	var order []string
	for _, c := range got {
		if c.Kind == KindSelf {
			order = append(order, "self")
			continue
		}
		order = append(order, c.Required.Name)
	}
	assert.Equal(t, []string{"self", "c", "a", "b"}, order)
}

func TestDetector_UnconstrainedLocalNeverConflicts(t *testing.T) {
	local := localSet(t, "numpy", "lib @ https://example.com/lib.whl")
	deps := []string{"numpy==1.26.4", "lib>=9"}
	assert.Empty(t, quietDetector().Check("lib", "1.0", deps, local))
}

func TestDetector_Idempotent(t *testing.T) {
	local := localSet(t, "requests==2.0.0", "urllib3<2")
	deps := []string{"requests>=2.5.0", "urllib3>=2.0", "idna"}
	d := quietDetector()

	first := d.FindConflicts("x", "1.0", deps, local)
	second := d.FindConflicts("x", "1.0", deps, local)
	assert.Equal(t, first, second)
	assert.Len(t, first, 2)
	assert.Equal(t, 2, local.Len())
}

// Pre-releases count as members of a range even when no specifier names one.
func TestCompatible_PreReleasesAreAdmitted(t *testing.T) {
	a := versions.MustParseConstraintSet(">=1.0")
	b := versions.MustParseConstraintSet("==2.0rc1")
	assert.True(t, Compatible(a, b))
	assert.True(t, Compatible(b, a))

	local := localSet(t, "mypkg>=1.0")
	assert.Empty(t, quietDetector().Check("mypkg", "3.0.0rc1", nil, local))
}

// A range that admits only versions between two probes is reported as a
// conflict even though 1.0.0.1 would satisfy both sides.
func TestDetector_NarrowIntervalReportsConflict(t *testing.T) {
	local := localSet(t, "narrow>1.0.0,<1.0.1")
	got := quietDetector().FindConflicts("x", "1.0", []string{"narrow>1.0.0,<1.0.1"}, local)
	assert.Len(t, got, 1)

	shared := versions.MustParse("1.0.0.1")
	set := versions.MustParseConstraintSet(">1.0.0,<1.0.1")
	assert.True(t, set.Contains(shared))
}
