package cli

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/khanglvm/delta-ego/internal/ego"
)

func writeTrajectory(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "trajectory.json")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("failed to write trajectory: %v", err)
	}
	return path
}

const threeSteps = `[
  {"valence": 0.0, "arousal": 0.0, "dominance": 0.0, "timestamp": 0},
  {"valence": 0.2, "arousal": 0.1, "dominance": 0.0, "timestamp": 1},
  {"valence": -0.4, "arousal": 0.6, "dominance": -0.2, "timestamp": 3}
]`

func TestAnalyzeCommand(t *testing.T) {
	env := newTestEnv(t)
	path := writeTrajectory(t, env.dir, threeSteps)

	out, err := env.run(t, "analyze", "--trajectory", path, "--json")
	if err != nil {
		t.Fatalf("analyze failed: %v\n%s", err, out)
	}

	var res ego.AnalysisResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}
	if res.Current.V != -0.4 {
		t.Errorf("current valence = %v, want -0.4", res.Current.V)
	}
	if !res.Dynamics.HasPrev {
		t.Error("expected a previous sample")
	}
	// dt = 2s between the last two samples.
	if math.Abs(res.Dynamics.Velocity.V-(-0.3)) > 1e-9 {
		t.Errorf("velocity valence = %v, want -0.3", res.Dynamics.Velocity.V)
	}
	if res.Cumulative.Samples != 3 {
		t.Errorf("samples = %d, want 3", res.Cumulative.Samples)
	}
}

func TestAnalyzeCommandSteps(t *testing.T) {
	env := newTestEnv(t)
	path := writeTrajectory(t, env.dir, threeSteps)

	out, err := env.run(t, "analyze", "-t", path, "--steps", "--json")
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	var results []ego.AnalysisResult
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 analyses, got %d", len(results))
	}
	if results[0].Dynamics.HasPrev {
		t.Error("the first step has no previous sample")
	}
	for i, r := range results {
		if r.Cumulative.Samples != i+1 {
			t.Errorf("step %d: samples = %d", i, r.Cumulative.Samples)
		}
	}
}

func TestAnalyzeCommandOverrides(t *testing.T) {
	env := newTestEnv(t)
	path := writeTrajectory(t, env.dir, threeSteps)

	// Baseline on the current point with a wide radius: stable, dampened stress.
	out, err := env.run(t, "analyze", "-t", path, "--json",
		"--baseline", "-0.4,0.6,-0.2", "--stability-radius", "0.5",
		"--variables", `{"dampening_factor": 0}`)
	if err != nil {
		t.Fatalf("analyze failed: %v\n%s", err, out)
	}
	var res ego.AnalysisResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if !res.Instant.Stable {
		t.Error("current point equals the baseline and should be stable")
	}
	if res.Instant.Stress != 0 {
		t.Errorf("dampening 0 inside the radius should zero stress, got %v", res.Instant.Stress)
	}
}

func TestAnalyzeCommandTable(t *testing.T) {
	env := newTestEnv(t)
	path := writeTrajectory(t, env.dir, threeSteps)

	out, err := env.run(t, "analyze", "-t", path)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	for _, want := range []string{"Stress:", "Reward:", "Lability:", "Area:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestAnalyzeCommandErrors(t *testing.T) {
	env := newTestEnv(t)
	good := writeTrajectory(t, env.dir, threeSteps)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing flag", []string{"analyze"}, "trajectory"},
		{"empty trajectory", []string{"analyze", "-t", writeTrajectory(t, t.TempDir(), "[]")}, "empty"},
		{"not an array", []string{"analyze", "-t", writeTrajectory(t, t.TempDir(), `{"valence": 1}`)}, "JSON array"},
		{"bad weights", []string{"analyze", "-t", good, "--weights", `{"weight_k": 0}`}, "weight_k"},
		{"unknown variable", []string{"analyze", "-t", good, "--variables", `{"theta": 1}`}, "variables"},
		{"short baseline", []string{"analyze", "-t", good, "--baseline", "0.1,0.2"}, "baseline"},
		{"baseline outside cube", []string{"analyze", "-t", good, "--baseline", "2,0,0"}, "baseline"},
		{"point outside cube", []string{"analyze", "-t", writeTrajectory(t, t.TempDir(), `[{"valence": 3}]`)}, "valence"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.run(t, tt.args...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestParseBaseline(t *testing.T) {
	p, err := parseBaseline(" 0.1, -0.2 ,0.3")
	if err != nil {
		t.Fatalf("parseBaseline failed: %v", err)
	}
	if p.V != 0.1 || p.A != -0.2 || p.D != 0.3 {
		t.Errorf("unexpected point %+v", p)
	}
	if _, err := parseBaseline("a,b,c"); err == nil {
		t.Error("non-numeric baseline should fail")
	}
}
