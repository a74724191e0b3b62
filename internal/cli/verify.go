package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/khanglvm/delta-ego/internal/config"
	"github.com/khanglvm/delta-ego/internal/kdtree"
)

// NewVerifyCmd creates the 'verify' command for checking configuration and catalogue.
func NewVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify configuration and catalogue",
		Long: `Verify that the configuration is valid, load the catalogue and report
every row that was skipped, then build the index and check storage.`,
		Example: `  delta-ego verify
  delta-ego verify --catalogue ~/lexicons/nrc-vad.tsv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd.OutOrStdout())
		},
	}

	return cmd
}

// runVerify validates the configuration and catalogue.
func runVerify(out io.Writer) error {
	path, err := configPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if catalogueFlag != "" {
		cfg.Catalogue = catalogueFlag
	}
	fmt.Fprintf(out, "✓ Config: %s\n", path)
	fmt.Fprintf(out, "✓ Search defaults: k=%d radius=%g sigma=%g mode=%q\n",
		cfg.Search.K, cfg.Search.Radius, cfg.Search.Sigma, cfg.Search.Mode)

	params, err := cfg.Params()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	fmt.Fprintf(out, "✓ Engine: baseline (%g, %g, %g) radius %g, window %d\n",
		params.Baseline.X, params.Baseline.Y, params.Baseline.Z, params.StabilityRadius, params.LabilityWindow)

	c, report, err := openCatalogue(cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Catalogue: %s (%s, %d of %d rows loaded)\n", report.Path, report.Format, report.Loaded, report.Rows)
	for _, w := range report.Warnings {
		fmt.Fprintf(out, "✗ line %d: %s\n", w.Line, w.Reason)
	}

	tree := kdtree.Build(c.Entries())
	fmt.Fprintf(out, "✓ Index: %d entries, depth %d\n", tree.Len(), tree.Depth())

	store := openStorage(cfg)
	if store == nil {
		fmt.Fprintln(out, "- Search history: disabled")
		return nil
	}
	if err := store.Init(); err != nil || !store.Enabled() {
		fmt.Fprintf(out, "✗ Search history: %s unavailable (%v)\n", store.Path(), err)
		return nil
	}
	defer store.Close()
	fmt.Fprintf(out, "✓ Search history: %s\n", store.Path())

	return nil
}
