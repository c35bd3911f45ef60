package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depman/pkg/conflict"
	errs "github.com/matzehuels/depman/pkg/errors"
	"github.com/matzehuels/depman/pkg/integrations"
	"github.com/matzehuels/depman/pkg/integrations/pypi"
	"github.com/matzehuels/depman/pkg/manifest"
	"github.com/matzehuels/depman/pkg/versions"
)

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	var (
		version string
		explain bool
	)
	cmd := &cobra.Command{
		Use:   "check <package>",
		Short: "Check whether a package can be added without conflicts",
		Long: `Compare the dependencies a package declares on PyPI with the requirements
already in the manifest, without changing anything.

Exits with status 2 when conflicts are found.`,
		Example: `  depman check flask
  depman check django --version 4.2.0 -f requirements-dev.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name := args[0]
			if err := validateTarget(name, version); err != nil {
				return err
			}

			set, err := c.loadManifest(ctx)
			if err != nil {
				return err
			}
			svc, err := c.newServices()
			if err != nil {
				return err
			}

			resolved, conflicts, err := c.findConflicts(ctx, svc.pypi, set, name, version)
			if err != nil {
				return err
			}
			err = c.reportConflicts(name, resolved, set.Path, conflicts)
			if explain {
				c.explainConflicts(conflicts)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&version, "version", "", "version to check (default latest)")
	cmd.Flags().BoolVar(&explain, "explain", false, "show the versions probed for each dependency conflict")
	return cmd
}

// validateTarget checks a package name and optional version from the command
// line.
func validateTarget(name, version string) error {
	if err := errs.ValidatePythonPackageName(name); err != nil {
		return err
	}
	if version != "" && !versions.IsValid(version) {
		return errs.New(errs.ErrCodeInvalidVersion, "invalid version %q", version)
	}
	return nil
}

// loadManifest reads the manifest named by --file and logs skipped entries.
func (c *CLI) loadManifest(ctx context.Context) (*manifest.Set, error) {
	path := c.cfg.File
	if err := errs.ValidateManifestPath(path); err != nil {
		return nil, err
	}
	set, err := manifest.Load(path, manifest.Options{Groups: []string{"*"}})
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidManifest, err, "could not read %s", path)
	}
	l := loggerFromContext(ctx)
	for _, w := range set.Warnings {
		l.Warn("skipping manifest entry", "file", path, "entry", w.String())
	}
	l.Debug("loaded manifest", "file", path, "format", set.Format, "requirements", set.Len())
	return set, nil
}

// findConflicts fetches name (at version, or the latest release) and checks
// its declared dependencies against set. It returns the version checked.
func (c *CLI) findConflicts(ctx context.Context, client *pypi.Client, set *manifest.Set, name, version string) (string, []conflict.Conflict, error) {
	spin := c.spin(ctx, fmt.Sprintf("Resolving dependencies of %s...", name))
	info, err := fetchRelease(ctx, client, name, version)
	spin.Stop()
	if err != nil {
		return "", nil, err
	}

	loggerFromContext(ctx).Debug("checking dependencies", "package", info.Name, "version", info.Version,
		"dependencies", len(info.RequiresDist))
	return info.Version, c.newDetector().Check(name, info.Version, info.RequiresDist, set), nil
}

func fetchRelease(ctx context.Context, client *pypi.Client, name, version string) (*pypi.PackageInfo, error) {
	var (
		info *pypi.PackageInfo
		err  error
	)
	if version == "" {
		info, err = client.FetchPackage(ctx, name, false)
	} else {
		info, err = client.FetchRelease(ctx, name, version, false)
	}
	switch {
	case errors.Is(err, integrations.ErrNotFound) && version != "":
		return nil, errs.Wrap(errs.ErrCodePackageNotFound, err, "%s %s not found on PyPI", name, version)
	case errors.Is(err, integrations.ErrNotFound):
		return nil, errs.Wrap(errs.ErrCodePackageNotFound, err, "package %q not found on PyPI", name)
	case err != nil:
		return nil, integrations.AsError(err, "could not fetch %q from PyPI", name)
	}
	if version != "" && info.Version == "" {
		info.Version = version
	}
	return info, nil
}

// explainConflicts lists the probe versions tried for each dependency
// conflict. None of them satisfied both sides.
func (c *CLI) explainConflicts(conflicts []conflict.Conflict) {
	for _, cf := range conflicts {
		if cf.Kind != conflict.KindDependency {
			continue
		}
		probes := conflict.Probes(cf.Required.Constraints, cf.Installed.Constraints)
		printDetail(c.out, "%s: probed %s", cf.Required.Name, strings.Join(probes, ", "))
	}
}

// reportConflicts prints conflicts and returns a CONFLICT error when there
// are any.
func (c *CLI) reportConflicts(name, version, path string, conflicts []conflict.Conflict) error {
	if len(conflicts) == 0 {
		printSuccess(c.out, "No conflicts: %s %s is compatible with %s", name, version, path)
		return nil
	}
	printError(c.out, "Found %d conflict(s) for %s %s:", len(conflicts), name, version)
	for _, cf := range conflicts {
		printWarning(c.out, "%s", cf)
	}
	return errs.New(errs.ErrCodeConflict, "%d conflict(s) found for %s %s", len(conflicts), name, version)
}
