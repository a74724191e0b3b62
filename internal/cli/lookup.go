package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewLookupCmd creates the 'lookup' command.
func NewLookupCmd() *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "lookup <term>",
		Short: "Find catalogue entries by word",
		Long: `Look up emotion terms by text. Exact matches (ignoring case) come first,
followed by fuzzy and prefix matches from the term index.`,
		Example: `  delta-ego lookup joy
  delta-ego lookup "anx" --limit 5 --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			searcher, err := openSearcher(cfg)
			if err != nil {
				return err
			}
			defer searcher.Close()

			text := strings.Join(args, " ")
			hits, err := searcher.Lookup(text, limit)
			if err != nil {
				return fmt.Errorf("lookup failed: %w", err)
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, hits)
			}
			if len(hits) == 0 {
				fmt.Fprintf(out, "No catalogue entry matches '%s'.\n", text)
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "TERM\tVALENCE\tAROUSAL\tDOMINANCE\tSCORE\tMATCH")
			for _, h := range hits {
				match := "keyword"
				if h.Exact {
					match = "exact"
				}
				fmt.Fprintf(tw, "%s\t%.3f\t%.3f\t%.3f\t%.3f\t%s\n", h.Term, h.V, h.A, h.D, h.Score, match)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 10, "Maximum results")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}
