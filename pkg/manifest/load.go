package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/depman/pkg/requirements"
)

// Format identifies a manifest file format.
type Format string

const (
	FormatRequirements Format = "requirements.txt"
	FormatPyproject    Format = "pyproject.toml"
	FormatPoetryLock   Format = "poetry.lock"
)

// DetectFormat picks the format from the file name.
func DetectFormat(path string) Format {
	switch filepath.Base(path) {
	case "pyproject.toml":
		return FormatPyproject
	case "poetry.lock":
		return FormatPoetryLock
	default:
		return FormatRequirements
	}
}

// Options tunes loading.
type Options struct {
	// Groups lists pyproject optional-dependency groups to include in
	// addition to [project].dependencies. "*" includes every group.
	Groups []string
}

// Load reads the manifest at path. A missing file yields an empty Set and no
// error, so that commands can run against a project that has not declared
// anything yet.
func Load(path string, opts Options) (*Set, error) {
	format := DetectFormat(path)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Set{Path: path, Format: format}, nil
	}
	if err != nil {
		return nil, err
	}

	var s *Set
	switch format {
	case FormatPyproject:
		s, err = parsePyproject(data, opts.Groups)
	case FormatPoetryLock:
		s, err = parsePoetryLock(data)
	default:
		s, err = ParseRequirements(strings.NewReader(string(data)))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Path = path
	s.Format = format
	return s, nil
}

// ParseRequirements reads requirements.txt content. Blank lines and comment
// lines are ignored silently; pip options, VCS and URL lines and malformed
// declarations are skipped with a warning.
func ParseRequirements(r io.Reader) (*Set, error) {
	s := &Set{Format: FormatRequirements}

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		line = stripComment(line)

		if line[0] == '-' {
			s.warn(lineNum, line, errPipOption)
			continue
		}
		if strings.HasPrefix(line, "git+") || (strings.Contains(line, "://") && !strings.Contains(line, "@")) {
			s.warn(lineNum, line, errBareURL)
			continue
		}

		req, err := requirements.Parse(line)
		if err != nil {
			s.warn(lineNum, line, err)
			continue
		}
		s.Add(req)
	}
	return s, scanner.Err()
}

var (
	errPipOption = errors.New("pip options are not supported")
	errBareURL   = errors.New("bare URL or VCS reference has no package name")
)

// stripComment drops a trailing " # ..." comment. A "#" that is not preceded
// by whitespace is kept, since it may be part of a URL fragment.
func stripComment(line string) string {
	for i := 1; i < len(line); i++ {
		if line[i] == '#' && (line[i-1] == ' ' || line[i-1] == '\t') {
			return strings.TrimSpace(line[:i])
		}
	}
	return line
}
