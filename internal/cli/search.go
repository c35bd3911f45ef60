package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/depman/pkg/errors"
	"github.com/matzehuels/depman/pkg/search"
)

// searchCommand creates the search command.
func (c *CLI) searchCommand() *cobra.Command {
	var (
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find packages on PyPI by name",
		Long: `Look up the query on PyPI together with common spellings of it
(python-<query>, py<query>, <query>-python and separator variants).`,
		Example: `  depman search yaml`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			query := args[0]
			if err := errs.ValidatePackageName(query); err != nil {
				return err
			}
			svc, err := c.newServices()
			if err != nil {
				return err
			}

			spin := c.spin(ctx, fmt.Sprintf("Searching PyPI for %s...", query))
			hits, err := search.Search(ctx, svc.pypi, query, limit, c.Logger)
			spin.Stop()
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(c.out, hits)
			}
			if len(hits) == 0 {
				printWarning(c.out, "No packages found for %q", query)
				return nil
			}

			rows := make([][]string, len(hits))
			for i, h := range hits {
				rows[i] = []string{h.Name, h.Version, h.Summary}
			}
			fmt.Fprintln(c.out, newTable([]string{"Package", "Version", "Description"}, rows, nil).Render())
			printNextStep(c.out, "Check one with", "depman health "+hits[0].Name)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", search.DefaultLimit, "maximum number of results")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	return cmd
}
