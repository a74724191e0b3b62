package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/khanglvm/delta-ego/internal/search"
	"github.com/khanglvm/delta-ego/internal/session"
)

type searchOptions struct {
	valence, arousal, dominance float64
	k                           int
	radius, sigma               float64
	mode                        string
	actor                       string
	jsonOutput                  bool
	analyze                     bool
}

// NewSearchCmd creates the 'search' command.
func NewSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Find the emotion terms nearest to a VAD point",
		Long: `Rank catalogue entries around a valence/arousal/dominance point.

Modes have the form base[~similarity][ -F]:
  base        knn, knn_d, cos, gauss_w
  similarity  l2, d, cos, gauss, gauss_w
  flag        -E expanded (default), -B bare, -S simplified

Flags left unset take their values from the configuration.`,
		Example: `  # Five nearest terms
  delta-ego search -V 0.8 -A 0.5 -D 0.3

  # Everything within 0.4, annotated with a Gaussian similarity
  delta-ego search -V -0.6 -A 0.7 -D -0.2 --mode "knn_d~gauss -S" --radius 0.4

  # Search and analyze in one step
  delta-ego search -V 0.2 -A 0.1 -D 0 --analyze --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, opts)
		},
	}

	cmd.Flags().Float64VarP(&opts.valence, "valence", "V", 0, "Valence in [-1, 1]")
	cmd.Flags().Float64VarP(&opts.arousal, "arousal", "A", 0, "Arousal in [-1, 1]")
	cmd.Flags().Float64VarP(&opts.dominance, "dominance", "D", 0, "Dominance in [-1, 1]")
	cmd.Flags().IntVarP(&opts.k, "k", "k", 0, "Number of results")
	cmd.Flags().Float64Var(&opts.radius, "radius", 0, "Distance bound for knn_d")
	cmd.Flags().Float64Var(&opts.sigma, "sigma", 0, "Gaussian bandwidth")
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "", "Query mode")
	cmd.Flags().StringVar(&opts.actor, "actor", "", "Actor recorded in the search log")
	cmd.Flags().BoolVarP(&opts.jsonOutput, "json", "j", false, "Output as JSON")
	cmd.Flags().BoolVar(&opts.analyze, "analyze", false, "Also run the dynamics engine on the searched point")

	return cmd
}

func runSearch(cmd *cobra.Command, opts searchOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	q := search.Query{
		V:      opts.valence,
		A:      opts.arousal,
		D:      opts.dominance,
		K:      cfg.Search.K,
		Radius: cfg.Search.Radius,
		Sigma:  cfg.Search.Sigma,
		Mode:   cfg.Search.Mode,
	}
	flags := cmd.Flags()
	if flags.Changed("k") {
		q.K = opts.k
	}
	if flags.Changed("radius") {
		q.Radius = opts.radius
	}
	if flags.Changed("sigma") {
		q.Sigma = opts.sigma
	}
	if flags.Changed("mode") {
		q.Mode = opts.mode
	}

	searcher, err := openSearcher(cfg)
	if err != nil {
		return err
	}
	defer searcher.Close()

	tracker, store := newTracker(cfg)
	if tracker != nil {
		defer store.Close()
		defer tracker.Stop()
	}

	actor := cfg.Session.Actor
	if opts.actor != "" {
		actor = opts.actor
	}
	sess := session.New(actor, searcher, sessionOptions(cfg, tracker))

	resp, err := sess.Search(q)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !opts.analyze {
		if opts.jsonOutput {
			return writeJSON(out, resp)
		}
		printResults(out, resp)
		return nil
	}

	analysis, err := sess.Analyze(session.AnalyzeOptions{})
	if err != nil {
		return err
	}
	if opts.jsonOutput {
		return writeJSON(out, map[string]interface{}{"search": resp, "analysis": analysis})
	}
	printResults(out, resp)
	fmt.Fprintln(out)
	printAnalysis(out, analysis)
	return nil
}

// printResults renders a response as an aligned table.
func printResults(w io.Writer, resp *search.Response) {
	fmt.Fprintf(w, "Mode: %s   Query: (%.3f, %.3f, %.3f)   Results: %d\n\n",
		resp.Mode, resp.Query.V, resp.Query.A, resp.Query.D, resp.Count)
	if resp.Count == 0 {
		fmt.Fprintln(w, "No catalogue entry matched.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tTERM\tVALENCE\tAROUSAL\tDOMINANCE\tDISTANCE\tSCORE\tSIMILARITY")
	for _, r := range resp.Results {
		sim := "-"
		if r.SimilarityPercent != nil {
			sim = fmt.Sprintf("%d%%", *r.SimilarityPercent)
		}
		if r.Expression != "" {
			sim = r.Expression
		}
		fmt.Fprintf(tw, "%d\t%s\t%.3f\t%.3f\t%.3f\t%.4f\t%.4f\t%s\n",
			r.Rank, r.Term, r.V, r.A, r.D, r.Distance, r.Score, sim)
	}
	tw.Flush()
}
