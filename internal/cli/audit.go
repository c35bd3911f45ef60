package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depman/pkg/audit"
	"github.com/matzehuels/depman/pkg/health"
	"github.com/matzehuels/depman/pkg/manifest"
)

// auditCommand creates the audit command.
func (c *CLI) auditCommand() *cobra.Command {
	var (
		all         bool
		asJSON      bool
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Check the health and freshness of every package in the manifest",
		Long: `Run a health check for every package in the manifest and report which
are Slow, Zombie or behind their latest release.

Only packages needing attention are listed unless --all is given. A package
that cannot be checked is reported as an error and does not stop the audit.`,
		Example: `  depman audit
  depman audit --all -f pyproject.toml
  depman audit --json > audit.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !cmd.Flags().Changed("concurrency") {
				concurrency = c.cfg.Concurrency
			}
			results, summary, err := c.runAudit(ctx, concurrency)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(c.out, struct {
					Packages []audit.Result `json:"packages"`
					Summary  audit.Summary  `json:"summary"`
				}{results, summary})
			}
			if summary.Total == 0 {
				printInfo(c.out, "No requirements found in %s", c.cfg.File)
				return nil
			}
			renderAudit(c.out, results, summary, all)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "list healthy, current packages too")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	cmd.Flags().IntVar(&concurrency, "concurrency", defaultConcurrency, "concurrent health checks")
	return cmd
}

// outdatedCommand creates the outdated command.
func (c *CLI) outdatedCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "outdated",
		Short: "List pinned packages with a newer release on PyPI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			results, _, err := c.runAudit(cmd.Context(), c.cfg.Concurrency)
			if err != nil {
				return err
			}
			upgrades := audit.Outdated(results)
			if asJSON {
				return writeJSON(c.out, upgrades)
			}
			if len(upgrades) == 0 {
				printSuccess(c.out, "All pinned packages are up to date")
				return nil
			}

			rows := make([][]string, len(upgrades))
			for i, u := range upgrades {
				rows[i] = []string{u.Name, u.Current, iconArrow, u.Latest}
			}
			fmt.Fprintln(c.out, newTable([]string{"Package", "Current", "", "Latest"}, rows,
				func(_, col int) lipgloss.Style {
					switch col {
					case 1:
						return StyleWarning
					case 3:
						return StyleSuccess
					}
					return lipgloss.NewStyle()
				}).Render())
			printDetail(c.out, "%d package(s) can be upgraded", len(upgrades))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	return cmd
}

func (c *CLI) runAudit(ctx context.Context, concurrency int) ([]audit.Result, audit.Summary, error) {
	set, err := c.loadManifest(ctx)
	if err != nil {
		return nil, audit.Summary{}, err
	}
	svc, err := c.newServices()
	if err != nil {
		return nil, audit.Summary{}, err
	}

	prog := newProgress(loggerFromContext(ctx))
	spin := c.spin(ctx, fmt.Sprintf("Auditing %d packages...", len(set.Effective())))
	a := &audit.Auditor{Checker: c.newChecker(svc), Concurrency: concurrency, Logger: c.Logger}
	results, summary := a.Run(ctx, set)
	spin.Stop()

	if err := ctx.Err(); err != nil {
		return nil, audit.Summary{}, err
	}
	prog.done(fmt.Sprintf("Audited %d packages", summary.Total))
	return results, summary, nil
}

func renderAudit(w io.Writer, results []audit.Result, s audit.Summary, all bool) {
	var rows [][]string
	for _, r := range results {
		if !all && !r.NeedsAttention() {
			continue
		}
		current := r.Current
		if current == "" {
			current = "-"
		}
		if r.Err != nil {
			rows = append(rows, []string{r.Name, current, "?", "-", StyleError.Render(iconError + " Error"), "-", "-"})
			continue
		}
		freshness := StyleSuccess.Render("Current")
		if r.Outdated {
			freshness = StyleWarning.Render("Outdated")
		}
		stars, issues := "-", "-"
		if r.Report.HasGitHub() {
			stars, issues = formatCount(r.Report.Stars), formatCount(r.Report.OpenIssues)
		}
		rows = append(rows, []string{r.Name, current, r.Latest, freshness, renderStatus(r.Report.Status), stars, issues})
	}

	if len(rows) > 0 {
		headers := []string{"Package", "Current", "Latest", "Version", "Health", "Stars", "Issues"}
		fmt.Fprintln(w, newTable(headers, rows, nil).Render())
	} else {
		printSuccess(w, "All %d packages are healthy and current", s.Total)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, renderPanel("Audit Summary", summaryText(s), colorCyan))
}

func summaryText(s audit.Summary) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format+"\n", args...)
	}
	line("Total Packages: %d", s.Total)
	line("")
	line("Health Status:")
	line("  %s %d", renderStatus(health.Active)+":", s.Healthy)
	line("  %s %d", renderStatus(health.Slow)+":", s.Slow)
	line("  %s %d", renderStatus(health.Zombie)+":", s.Zombie)
	if s.Errors > 0 {
		line("  %s %d", StyleError.Render("Errors:"), s.Errors)
	}
	line("")
	line("Outdated: %d", s.Outdated)
	line("With GitHub: %d", s.WithGitHub)
	if s.WithGitHub > 0 {
		line("")
		line("GitHub Stats:")
		line("  Total Stars: %s", formatCount(s.TotalStars))
		line("  Total Issues: %s", formatCount(s.TotalOpenIssues))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// statsCommand creates the stats command.
func (c *CLI) statsCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show how tightly the manifest pins its packages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := c.loadManifest(cmd.Context())
			if err != nil {
				return err
			}
			st := manifest.ComputeStats(set)
			if asJSON {
				return writeJSON(c.out, st)
			}
			if st.Total == 0 {
				printInfo(c.out, "No requirements found in %s", set.Path)
				return nil
			}

			fmt.Fprintln(c.out, StyleTitle.Render("Manifest Statistics: "+set.Path))
			printKeyValue(c.out, "Total", fmt.Sprint(st.Total))
			printKeyValue(c.out, "Pinned (==)", fmt.Sprintf("%d (%.1f%%)", st.Pinned, st.PinnedPercent()))
			printKeyValue(c.out, "Ranges", fmt.Sprint(st.Ranges))
			printKeyValue(c.out, "Unpinned", fmt.Sprint(st.Unpinned))
			if st.Unpinned > 0 {
				printNextStep(c.out, "Pin versions for reproducible installs", "pip freeze > "+set.Path)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print statistics as JSON")
	return cmd
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
