package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/depman/pkg/errors"
	"github.com/matzehuels/depman/pkg/health"
)

// healthCommand creates the health command.
func (c *CLI) healthCommand() *cobra.Command {
	var asJSON, refresh bool
	cmd := &cobra.Command{
		Use:   "health <package>",
		Short: "Check how actively a package is maintained",
		Long: `Fetch a package from PyPI and its repository from GitHub, and grade its
maintenance as Active, Slow or Zombie.

Packages with a commit in the last 90 days are Active and in the last 180
days Slow. Without GitHub data the latest release decides: 180 days for
Active, a year for Slow.`,
		Example: `  depman health requests
  depman health flask --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name := args[0]
			if err := errs.ValidatePythonPackageName(name); err != nil {
				return err
			}

			report, err := c.checkHealth(ctx, name, refresh)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(c.out, report)
			}
			fmt.Fprintln(c.out)
			fmt.Fprintln(c.out, renderHealthReport(report, time.Now()))
			fmt.Fprintln(c.out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached responses")
	return cmd
}

// checkHealth runs one health check behind a spinner.
func (c *CLI) checkHealth(ctx context.Context, name string, refresh bool) (*health.Report, error) {
	svc, err := c.newServices()
	if err != nil {
		return nil, err
	}
	checker := c.newChecker(svc)
	checker.Refresh = refresh
	spin := c.spin(ctx, fmt.Sprintf("Checking health of %s...", name))
	report, err := checker.Check(ctx, name)
	spin.Stop()
	return report, err
}

// renderHealthReport formats a report as a bordered panel colored by status.
func renderHealthReport(r *health.Report, now time.Time) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format+"\n", args...)
	}

	if r.Summary != "" {
		line("%s %s", StyleDim.Render("Summary:"), r.Summary)
	}
	line("%s %s", StyleDim.Render("License:"), r.License)
	line("")

	line("%s", StyleTitle.Render("PyPI"))
	line("├── Latest Release: %s (%s)", r.ReleaseDate.Format(time.DateOnly), health.FormatRelative(r.ReleaseDate, now))
	line("└── Version: %s", r.Version)
	line("")

	if r.HasGitHub() {
		line("%s", StyleTitle.Render("GitHub ("+r.Repo+")"))
		if r.LastCommit != nil {
			line("├── Last Commit: %s (%s)", r.LastCommit.Format(time.DateOnly), health.FormatRelative(*r.LastCommit, now))
		}
		if r.RepoURL != "" {
			line("├── URL: %s", StyleLink.Render(r.RepoURL))
		}
		line("├── Open Issues: %s", StyleNumber.Render(formatCount(r.OpenIssues)))
		if r.Archived {
			line("├── %s", StyleWarning.Render("Archived"))
		}
		line("└── Stars: %s", StyleNumber.Render(formatCount(r.Stars)))
		line("")
	}

	b.WriteString(renderStatus(r.Status) + " Recommendation: " + r.Recommendation)

	title := fmt.Sprintf("Health Report for: %s (%s)", r.Name, r.Version)
	return renderPanel(title, b.String(), statusColor(r.Status))
}
