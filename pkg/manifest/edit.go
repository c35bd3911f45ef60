package manifest

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/depman/pkg/requirements"
)

var (
	// ErrAlreadyPresent is returned by Append when the package is declared.
	ErrAlreadyPresent = errors.New("package already declared")

	// ErrNotPresent is returned by Remove when nothing matched.
	ErrNotPresent = errors.New("package not declared")

	// ErrReadOnly is returned when editing a format other than requirements.txt.
	ErrReadOnly = errors.New("manifest format is read-only")
)

// Append adds "name==version" (or just "name" when version is empty) as a
// new line at the end of the requirements file at path, creating the file if
// needed. It refuses names that are already declared under any spelling.
func Append(path, name, version string) error {
	if DetectFormat(path) != FormatRequirements {
		return fmt.Errorf("%w: %s", ErrReadOnly, filepath.Base(path))
	}
	set, err := Load(path, Options{})
	if err != nil {
		return err
	}
	if set.Has(name) {
		return fmt.Errorf("%w: %s in %s", ErrAlreadyPresent, name, path)
	}

	line := name
	if version != "" {
		line = name + "==" + version
	}

	existing, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if len(existing) > 0 && !bytes.HasSuffix(existing, []byte("\n")) {
		line = "\n" + line
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(line + "\n"); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Remove deletes every line of the requirements file at path that declares
// name, and returns how many lines were dropped. Comments, blank lines and
// unparseable lines are preserved as written.
func Remove(path, name string) (int, error) {
	if DetectFormat(path) != FormatRequirements {
		return 0, fmt.Errorf("%w: %s", ErrReadOnly, filepath.Base(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	key := requirements.Normalize(name)
	var out bytes.Buffer
	removed := 0

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		raw := scanner.Text()
		line := strings.TrimSpace(raw)
		if line != "" && line[0] != '#' && line[0] != '-' {
			if req, err := requirements.Parse(stripComment(line)); err == nil && req.Key() == key {
				removed++
				continue
			}
		}
		out.WriteString(raw)
		out.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	if removed == 0 {
		return 0, fmt.Errorf("%w: %s in %s", ErrNotPresent, name, path)
	}
	return removed, writeFileAtomic(path, out.Bytes())
}

// writeFileAtomic replaces path via a temp file in the same directory,
// keeping the original permission bits.
func writeFileAtomic(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".depman-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
