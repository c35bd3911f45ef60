package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depman/pkg/compare"
	errs "github.com/matzehuels/depman/pkg/errors"
)

// compareCommand creates the compare command.
func (c *CLI) compareCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <package> <package>",
		Short: "Compare the health of two packages side by side",
		Long: `Check two alternative packages and compare release freshness, health,
GitHub popularity and activity, then recommend one.

The recommendation scores ten points per health level (Active 3, Slow 2,
Zombie 1), a point per thousand stars up to ten, and five points each for a
release and a commit in the last 90 days.`,
		Example: `  depman compare requests httpx`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			for _, name := range args {
				if err := errs.ValidatePythonPackageName(name); err != nil {
					return err
				}
			}
			svc, err := c.newServices()
			if err != nil {
				return err
			}

			spin := c.spin(ctx, fmt.Sprintf("Comparing %s and %s...", args[0], args[1]))
			res, err := compare.Compare(ctx, c.newChecker(svc), args[0], args[1])
			spin.Stop()
			if err != nil {
				return err
			}

			rows := res.Rows(time.Now())
			cells := make([][]string, len(rows))
			for i, r := range rows {
				winner := "-"
				switch r.Winner {
				case "":
				case compare.Tie:
					winner = compare.Tie
				default:
					winner = iconWinner + " " + r.Winner
				}
				cells[i] = []string{r.Metric, r.A, r.B, winner}
			}

			fmt.Fprintln(c.out, StyleTitle.Render("Package Comparison"))
			fmt.Fprintln(c.out, newTable([]string{"Metric", res.A.Name, res.B.Name, "Winner"}, cells,
				func(_, col int) lipgloss.Style {
					switch col {
					case 0:
						return lipgloss.NewStyle().Foreground(colorCyan)
					case 3:
						return lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
					}
					return lipgloss.NewStyle()
				}).Render())

			if w := res.Winner(); w == compare.Tie {
				printInfo(c.out, "Overall: Tie - both are good choices")
			} else {
				printSuccess(c.out, "Overall recommendation: %s", StyleTitle.Render(w))
			}
			return nil
		},
	}
}
