package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/depman/pkg/errors"
	"github.com/matzehuels/depman/pkg/health"
	"github.com/matzehuels/depman/pkg/manifest"
)

// addCommand creates the add command.
func (c *CLI) addCommand() *cobra.Command {
	var (
		version string
		yes     bool
		dryRun  bool
	)
	cmd := &cobra.Command{
		Use:   "add <package>",
		Short: "Add a package to the manifest after health and conflict checks",
		Long: `Check a package's health, then its declared dependencies against the
manifest, and append "name==version" only when nothing conflicts.

Zombie packages ask for confirmation first; --yes skips the question. Without
a terminal the question is answered no.`,
		Example: `  depman add requests
  depman add django --version 4.2.0 --dry-run
  depman add old-lib --yes`,
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
			if set.Format != manifest.FormatRequirements {
				return errs.New(errs.ErrCodeInvalidManifest, "%s is read-only, only requirements files can be edited", set.Path)
			}

			svc, err := c.newServices()
			if err != nil {
				return err
			}

			spin := c.spin(ctx, fmt.Sprintf("Checking health of %s...", name))
			report, err := c.newChecker(svc).Check(ctx, name)
			spin.Stop()
			if err != nil {
				return err
			}
			printInfo(c.out, "%s: %s", report.Name, renderStatus(report.Status))
			printDetail(c.out, "%s", report.Recommendation)

			if report.Status == health.Zombie && !yes {
				ok, err := c.confirm(fmt.Sprintf("%s looks unmaintained. Add it anyway?", report.Name))
				if err != nil {
					return err
				}
				if !ok {
					printWarning(c.out, "Not adding %s", name)
					return nil
				}
			}

			resolved, conflicts, err := c.findConflicts(ctx, svc.pypi, set, name, version)
			if err != nil {
				return err
			}
			if err := c.reportConflicts(name, resolved, set.Path, conflicts); err != nil {
				printDetail(c.out, "%s was not modified", set.Path)
				return err
			}

			if dryRun {
				printInfo(c.out, "Dry run: would add %s==%s to %s", name, resolved, set.Path)
				return nil
			}
			if err := manifest.Append(set.Path, name, resolved); err != nil {
				if errors.Is(err, manifest.ErrAlreadyPresent) {
					return errs.Wrap(errs.ErrCodeAlreadyExists, err, "%s is already in %s", name, set.Path)
				}
				return errs.Wrap(errs.ErrCodeInternal, err, "could not update %s", set.Path)
			}
			printSuccess(c.out, "Added %s==%s to %s", name, resolved, set.Path)
			printNextStep(c.out, "Install it with", "pip install -r "+set.Path)
			return nil
		},
	}
	cmd.Flags().StringVar(&version, "version", "", "version to add (default latest)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "add Zombie packages without asking")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "check only, do not modify the manifest")
	return cmd
}

// removeCommand creates the remove command.
func (c *CLI) removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <package>",
		Aliases: []string{"rm"},
		Short:   "Remove a package from the manifest",
		Long: `Delete every line of the requirements file that declares the package,
under any spelling of its name. Comments and other lines are kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := errs.ValidatePythonPackageName(name); err != nil {
				return err
			}
			path := c.cfg.File
			if err := errs.ValidateManifestPath(path); err != nil {
				return err
			}

			n, err := manifest.Remove(path, name)
			switch {
			case errors.Is(err, manifest.ErrNotPresent):
				return errs.Wrap(errs.ErrCodePackageNotFound, err, "%s is not in %s", name, path)
			case errors.Is(err, manifest.ErrReadOnly):
				return errs.Wrap(errs.ErrCodeInvalidManifest, err, "%s is read-only, only requirements files can be edited", path)
			case errors.Is(err, os.ErrNotExist):
				return errs.Wrap(errs.ErrCodeFileNotFound, err, "%s does not exist", path)
			case err != nil:
				return errs.Wrap(errs.ErrCodeInternal, err, "could not update %s", path)
			}
			printSuccess(c.out, "Removed %s from %s (%d line(s))", name, path, n)
			return nil
		},
	}
}
