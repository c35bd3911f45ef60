package requirements

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input       string
		name        string
		extras      []string
		constraints string
		url         string
		marker      string
	}{
		{"requests", "requests", nil, "", "", ""},
		{"requests==2.0.0", "requests", nil, "==2.0.0", "", ""},
		{"flask>=1.0,<2.0", "flask", nil, ">=1.0,<2.0", "", ""},
		{"Flask >= 1.0 , < 2.0", "Flask", nil, ">=1.0,<2.0", "", ""},
		{"requests[socks,security]>=2.8", "requests", []string{"socks", "security"}, ">=2.8", "", ""},
		{"pytest>=6.0; extra == \"test\"", "pytest", nil, ">=6.0", "", `extra == "test"`},
		{"pywin32>=300 ; sys_platform == 'win32'", "pywin32", nil, ">=300", "", "sys_platform == 'win32'"},
		{"idna (>=2.5,<4)", "idna", nil, ">=2.5,<4", "", ""},
		{"zope.interface~=5.4", "zope.interface", nil, "~=5.4", "", ""},
		{"mylib @ https://example.com/mylib-1.0.tar.gz", "mylib", nil, "", "https://example.com/mylib-1.0.tar.gz", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			req, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.input, err)
			}
			if req.Name != tt.name {
				t.Errorf("Name = %q, want %q", req.Name, tt.name)
			}
			if diff := cmp.Diff(tt.extras, req.Extras); diff != "" {
				t.Errorf("Extras mismatch (-want +got):\n%s", diff)
			}
			if got := req.Constraints.String(); got != tt.constraints {
				t.Errorf("Constraints = %q, want %q", got, tt.constraints)
			}
			if req.URL != tt.url {
				t.Errorf("URL = %q, want %q", req.URL, tt.url)
			}
			if req.Marker != tt.marker {
				t.Errorf("Marker = %q, want %q", req.Marker, tt.marker)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []string{
		"",
		"   ",
		">=1.0",
		"-e ./local",
		"requests==",
		"requests 2.0",
		"requests[socks>=2.0",
		"requests>=2.0;",
		"requests>=banana",
		"mylib @ ",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want error", input)
			}
			if !errors.Is(err, ErrInvalidRequirement) {
				t.Errorf("expected ErrInvalidRequirement, got %v", err)
			}
		})
	}
}

func TestRequirementString(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"requests", "requests"},
		{"requests >= 2.0 , <3", "requests>=2.0,<3"},
		{"requests[socks]>=2.0;python_version<'3.8'", "requests[socks]>=2.0; python_version<'3.8'"},
		{"mylib@https://x.invalid/a.whl", "mylib @ https://x.invalid/a.whl"},
	}
	for _, tt := range tests {
		req, err := Parse(tt.input)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", tt.input, err)
		}
		if got := req.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Django", "django"},
		{"Flask_App", "flask-app"},
		{"some_package-name", "some-package-name"},
		{"zope.interface", "zope-interface"},
		{"Foo__-.Bar", "foo-bar"},
		{"  requests ", "requests"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}

	if Normalize("typing-extensions") != Normalize("Typing_Extensions") {
		t.Error("dash and underscore spellings must normalize equally")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		input string
		want  Class
	}{
		{"requests>=2.0", Applicable},
		{`pytest>=6.0; extra == "test"`, SkipExtra},
		{`sphinx; extra == 'docs' and python_version >= "3.8"`, SkipExtra},
		{`colorama; platform_system == "Windows"`, SkipPlatform},
		{`pywin32; sys_platform == "win32"`, SkipPlatform},
		{`importlib-metadata; python_version < "3.10"`, Applicable},
		{`uvloop; os_name != "nt"`, Applicable},
		{"not a requirement !!", Invalid},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, got, err := Classify(tt.input)
			if got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if (err != nil) != (tt.want == Invalid) {
				t.Errorf("Classify(%q) err = %v", tt.input, err)
			}
		})
	}
}
