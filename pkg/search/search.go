// Package search looks up a query and common spellings of it on PyPI.
//
// PyPI has no search API, so [Search] probes the query itself followed by
// the usual naming variants (python-x, pyx, x-python, separator swaps) and
// keeps the ones that exist.
package search

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/depman/pkg/integrations"
	"github.com/matzehuels/depman/pkg/integrations/pypi"
	"github.com/matzehuels/depman/pkg/requirements"
)

// DefaultLimit caps results when none is given.
const DefaultLimit = 20

// PackageFetcher reads registry metadata. *pypi.Client implements it.
type PackageFetcher interface {
	FetchPackage(ctx context.Context, name string, refresh bool) (*pypi.PackageInfo, error)
}

// Hit is one package found.
type Hit struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Summary string `json:"summary"`
}

// Variants returns the names probed for query, exact spelling first.
// Variants that normalize to an earlier one are dropped since PyPI serves
// them from the same project.
func Variants(query string) []string {
	candidates := []string{
		query,
		strings.ToLower(query),
		strings.ReplaceAll(query, "-", "_"),
		strings.ReplaceAll(query, "_", "-"),
		"python-" + query,
		"py" + query,
		query + "-python",
	}
	seen := make(map[string]bool, len(candidates))
	out := candidates[:0]
	for _, c := range candidates {
		key := requirements.Normalize(c)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}

// Search returns up to limit packages matching query, in probe order. Names
// that do not exist are skipped; other lookup failures are logged and
// skipped. Only cancellation is returned as an error.
func Search(ctx context.Context, client PackageFetcher, query string, limit int, logger *log.Logger) ([]Hit, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if logger == nil {
		logger = log.Default()
	}

	names := Variants(query)
	found := make([]*pypi.PackageInfo, len(names))

	g := new(errgroup.Group)
	for i, name := range names {
		g.Go(func() error {
			info, err := client.FetchPackage(ctx, name, false)
			switch {
			case err == nil:
				found[i] = info
			case errors.Is(err, integrations.ErrNotFound):
			case ctx.Err() != nil:
				return ctx.Err()
			default:
				logger.Debug("search lookup failed", "name", name, "err", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var hits []Hit
	seen := make(map[string]bool)
	for _, info := range found {
		if info == nil || seen[info.Name] {
			continue
		}
		seen[info.Name] = true
		summary := info.Summary
		if summary == "" {
			summary = "No description"
		}
		hits = append(hits, Hit{Name: info.Name, Version: info.Version, Summary: summary})
		if len(hits) == limit {
			break
		}
	}
	return hits, nil
}
