package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/depman/pkg/integrations"
	"github.com/matzehuels/depman/pkg/integrations/pypi"
	"github.com/matzehuels/depman/pkg/requirements"
)

type fakeIndex struct {
	pkgs map[string]*pypi.PackageInfo // keyed by normalized name
	errs map[string]error

	mu    sync.Mutex
	calls []string
}

func (f *fakeIndex) FetchPackage(ctx context.Context, name string, _ bool) (*pypi.PackageInfo, error) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := requirements.Normalize(name)
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	if p, ok := f.pkgs[key]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %s", integrations.ErrNotFound, name)
}

var quiet = log.New(io.Discard)

func TestVariants(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"yaml", []string{"yaml", "python-yaml", "pyyaml", "yaml-python"}},
		{"Date_Util", []string{"Date_Util", "python-Date_Util", "pyDate_Util", "Date_Util-python"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Variants(tt.query)); diff != "" {
				t.Errorf("Variants(%q) mismatch (-want +got):\n%s", tt.query, diff)
			}
		})
	}
}

func TestSearch(t *testing.T) {
	idx := &fakeIndex{pkgs: map[string]*pypi.PackageInfo{
		"yaml":   {Name: "yaml", Version: "0.1", Summary: ""},
		"pyyaml": {Name: "PyYAML", Version: "6.0.1", Summary: "YAML parser and emitter for Python"},
	}}

	hits, err := Search(context.Background(), idx, "yaml", 0, quiet)
	require.NoError(t, err)

	want := []Hit{
		{Name: "yaml", Version: "0.1", Summary: "No description"},
		{Name: "PyYAML", Version: "6.0.1", Summary: "YAML parser and emitter for Python"},
	}
	if diff := cmp.Diff(want, hits); diff != "" {
		t.Errorf("Search() mismatch (-want +got):\n%s", diff)
	}
}

func TestSearch_DedupesByReturnedName(t *testing.T) {
	same := &pypi.PackageInfo{Name: "requests", Version: "2.31.0"}
	idx := &fakeIndex{pkgs: map[string]*pypi.PackageInfo{
		"requests":        same,
		"python-requests": same,
	}}

	hits, err := Search(context.Background(), idx, "requests", 10, quiet)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestSearch_Limit(t *testing.T) {
	idx := &fakeIndex{pkgs: map[string]*pypi.PackageInfo{
		"foo":        {Name: "foo"},
		"python-foo": {Name: "python-foo"},
		"pyfoo":      {Name: "pyfoo"},
	}}

	hits, err := Search(context.Background(), idx, "foo", 2, quiet)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "foo", hits[0].Name)
	assert.Equal(t, "python-foo", hits[1].Name)
}

func TestSearch_SkipsFailures(t *testing.T) {
	idx := &fakeIndex{
		pkgs: map[string]*pypi.PackageInfo{"pyfoo": {Name: "pyfoo"}},
		errs: map[string]error{"foo": integrations.ErrUpstreamDown},
	}

	hits, err := Search(context.Background(), idx, "foo", 0, quiet)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "pyfoo", hits[0].Name)
}

func TestSearch_NoMatches(t *testing.T) {
	hits, err := Search(context.Background(), &fakeIndex{}, "zzz", 0, quiet)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearch_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Search(ctx, &fakeIndex{}, "foo", 0, quiet)
	assert.True(t, errors.Is(err, context.Canceled))
}
