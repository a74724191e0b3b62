package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/khanglvm/delta-ego/internal/ego"
	"github.com/khanglvm/delta-ego/internal/session"
	"github.com/khanglvm/delta-ego/internal/vad"
)

type analyzeOptions struct {
	trajectory      string
	weights         string
	variables       string
	baseline        string
	stabilityRadius float64
	steps           bool
	jsonOutput      bool
}

// NewAnalyzeCmd creates the 'analyze' command.
func NewAnalyzeCmd() *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the affective dynamics engine over a trajectory",
		Long: `Replay a recorded trajectory and analyze it.

The trajectory file is a JSON array of points:
  [{"valence": 0.1, "arousal": 0.2, "dominance": 0.0, "timestamp": 0}, ...]

The last point is the current state and the one before it the previous
state. Weights and variables accept JSON objects and override the
configuration field by field.`,
		Example: `  delta-ego analyze --trajectory day.json

  delta-ego analyze --trajectory day.json \
    --weights '{"weightA_stress": 0.9}' --variables '{"lability_window": 4}' \
    --baseline 0.1,0,0.2 --stability-radius 0.25

  # One analysis per sample
  delta-ego analyze --trajectory day.json --steps --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.trajectory, "trajectory", "t", "", "JSON file with the trajectory (required)")
	cmd.Flags().StringVar(&opts.weights, "weights", "", "Weight overrides as JSON")
	cmd.Flags().StringVar(&opts.variables, "variables", "", "Variable overrides as JSON")
	cmd.Flags().StringVar(&opts.baseline, "baseline", "", "Emotion base as v,a,d")
	cmd.Flags().Float64Var(&opts.stabilityRadius, "stability-radius", 0, "Stability radius around the baseline")
	cmd.Flags().BoolVar(&opts.steps, "steps", false, "Analyze after every sample")
	cmd.Flags().BoolVarP(&opts.jsonOutput, "json", "j", false, "Output as JSON")
	cmd.MarkFlagRequired("trajectory")

	return cmd
}

func runAnalyze(cmd *cobra.Command, opts analyzeOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	points, err := readTrajectory(opts.trajectory)
	if err != nil {
		return err
	}

	var call session.AnalyzeOptions
	if call.Weights, err = ego.ParseWeights([]byte(opts.weights)); err != nil {
		return err
	}
	if call.Variables, err = ego.ParseVariables([]byte(opts.variables)); err != nil {
		return err
	}

	// Only the flags given override the configured axis.
	flags := cmd.Flags()
	if flags.Changed("baseline") || flags.Changed("stability-radius") {
		call.Axis = &ego.Axis{}
		if flags.Changed("baseline") {
			base, err := parseBaseline(opts.baseline)
			if err != nil {
				return err
			}
			call.Axis.Baseline = &base
		}
		if flags.Changed("stability-radius") {
			call.Axis.StabilityRadius = &opts.stabilityRadius
		}
	}

	sessOpts := sessionOptions(cfg, nil)
	sessOpts.AutoAnalyze = false
	sess := session.New(cfg.Session.Actor, nil, sessOpts)

	var results []*ego.AnalysisResult
	for i, p := range points {
		sess.Observe(p)
		if !opts.steps && i < len(points)-1 {
			continue
		}
		res, err := sess.Analyze(call)
		if err != nil {
			return err
		}
		results = append(results, res)
	}

	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		if opts.steps {
			return writeJSON(out, results)
		}
		return writeJSON(out, results[0])
	}
	for i, res := range results {
		if i > 0 {
			fmt.Fprintln(out)
		}
		printAnalysis(out, res)
	}
	return nil
}

// readTrajectory loads a non-empty JSON array of points.
func readTrajectory(path string) ([]vad.Point, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read trajectory: %w", err)
	}
	var points []vad.Point
	if err := json.Unmarshal(data, &points); err != nil {
		return nil, &vad.DataLoadError{Path: path, Reason: "trajectory must be a JSON array of points", Err: err}
	}
	if len(points) == 0 {
		return nil, &vad.DataLoadError{Path: path, Reason: "trajectory is empty"}
	}
	for i, p := range points {
		if !p.Vec().InRange() {
			return nil, &vad.DataLoadError{
				Path:   path,
				Reason: fmt.Sprintf("point %d: valence, arousal and dominance must lie in [-1, 1]", i),
			}
		}
	}
	return points, nil
}

// parseBaseline reads "v,a,d".
func parseBaseline(s string) (vad.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return vad.Point{}, &vad.InvalidParameterError{Field: "baseline", Reason: fmt.Sprintf("want v,a,d, got %q", s)}
	}
	var xs [3]float64
	for i, p := range parts {
		x, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return vad.Point{}, &vad.InvalidParameterError{Field: "baseline", Reason: fmt.Sprintf("%q is not a number", p)}
		}
		xs[i] = x
	}
	return vad.Point{V: xs[0], A: xs[1], D: xs[2]}, nil
}

// printAnalysis renders one analysis for humans.
func printAnalysis(w io.Writer, r *ego.AnalysisResult) {
	in, dyn, cum := r.Instant, r.Dynamics, r.Cumulative

	fmt.Fprintf(w, "Current:    (%.3f, %.3f, %.3f)\n", r.Current.V, r.Current.A, r.Current.D)
	stable := "outside"
	if in.Stable {
		stable = "inside"
	}
	fmt.Fprintf(w, "Deviation:  %.4f (%s stability radius)\n", in.Deviation, stable)
	fmt.Fprintf(w, "Stress:     %.4f  (%.1f%%)\n", in.Stress, in.StressRatio*100)
	fmt.Fprintf(w, "Reward:     %.4f  (%.1f%%)\n", in.Reward, in.RewardRatio*100)

	if dyn.HasPrev {
		fmt.Fprintf(w, "Delta:      (%+.3f, %+.3f, %+.3f)\n", dyn.Delta.V, dyn.Delta.A, dyn.Delta.D)
		fmt.Fprintf(w, "Velocity:   (%+.3f, %+.3f, %+.3f)/s\n", dyn.Velocity.V, dyn.Velocity.A, dyn.Velocity.D)
		fmt.Fprintf(w, "Lability:   %.4f\n", dyn.AffectiveLability)
		fmt.Fprintf(w, "Tilt:       %.4f\n", dyn.Tilt)
	} else {
		fmt.Fprintln(w, "Dynamics:   no previous sample")
	}

	a := cum.AverageArea
	fmt.Fprintf(w, "Area:       centre (%.3f, %.3f, %.3f) radius %.4f max %.4f over %d samples\n",
		a.X, a.Y, a.Z, a.Radius, a.MaxRadius, cum.Samples)
	fmt.Fprintf(w, "Cumulative: stress %.4f reward %.4f (stress %.1f%%)\n", cum.Stress, cum.Reward, cum.StressRatio*100)
}
