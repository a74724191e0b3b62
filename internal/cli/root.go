package cli

import (
	"github.com/spf13/cobra"

	"github.com/khanglvm/delta-ego/internal/version"
)

// NewRootCmd assembles the delta-ego command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "delta-ego",
		Short: "Emotion catalogue search and affective dynamics",
		Long: `delta-ego maps points in valence/arousal/dominance space to emotion words
and tracks how an actor's affect moves over time.

  • search   - Rank emotion terms around a VAD point
  • analyze  - Stress, reward, dynamics and area for a trajectory
  • lookup   - Find emotion terms by word
  • serve    - Expose search and analysis as MCP tools over stdio`,
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	AddGlobalFlags(rootCmd)

	rootCmd.AddCommand(NewInitCmd())
	rootCmd.AddCommand(NewSearchCmd())
	rootCmd.AddCommand(NewAnalyzeCmd())
	rootCmd.AddCommand(NewLookupCmd())
	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewBenchmarkCmd())
	rootCmd.AddCommand(NewExportIndexCmd())
	rootCmd.AddCommand(NewVerifyCmd())
	rootCmd.AddCommand(NewHistoryCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}
