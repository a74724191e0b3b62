package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/khanglvm/delta-ego/internal/benchmark"
)

// NewBenchmarkCmd creates the 'benchmark' command for index latency testing.
func NewBenchmarkCmd() *cobra.Command {
	opts := benchmark.DefaultOptions()
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "benchmark",
		Aliases: []string{"bench"},
		Short:   "Compare KD-tree and linear-scan nearest neighbour latency",
		Long: `Run a latency benchmark over the configured catalogue comparing:

KD-TREE:
  The balanced index used by knn, knn_d and gauss_w queries.

LINEAR SCAN:
  Squared distance to every entry, sorted with the same tie-break.

Both answer the same seeded random queries; the agreement figure reports
how often they returned identical rankings.`,
		Example: `  # Run benchmark with current config
  delta-ego benchmark

  # 10k queries, k=20, output as JSON
  delta-ego benchmark -n 10000 --k 20 --json`,
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

			result, err := benchmark.RunBenchmark(searcher.Tree(), opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, result)
			}
			fmt.Fprintln(out)
			fmt.Fprint(out, benchmark.FormatResult(result))
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.Queries, "queries", "n", opts.Queries, "Number of random queries")
	cmd.Flags().IntVarP(&opts.K, "k", "k", opts.K, "Neighbours per query")
	cmd.Flags().Int64Var(&opts.Seed, "seed", opts.Seed, "Random seed")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}
