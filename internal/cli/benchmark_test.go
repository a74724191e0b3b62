package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/khanglvm/delta-ego/internal/benchmark"
)

func TestBenchmarkCommandJSON(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "benchmark", "-n", "50", "--k", "2", "--json")
	if err != nil {
		t.Fatalf("benchmark failed: %v\n%s", err, out)
	}
	var res benchmark.BenchmarkResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}
	if res.CatalogueSize != 5 || res.Queries != 50 || res.K != 2 {
		t.Errorf("unexpected result header: %+v", res)
	}
	if res.Agreement != 1 {
		t.Errorf("kd-tree and linear scan disagree: agreement %v", res.Agreement)
	}
}

func TestBenchmarkCommandAlias(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "bench", "-n", "10")
	if err != nil {
		t.Fatalf("bench failed: %v", err)
	}
	if !strings.Contains(out, "Agreement") {
		t.Errorf("formatted output missing agreement:\n%s", out)
	}
	if _, err := env.run(t, "bench", "-n", "0"); err == nil {
		t.Error("zero queries should fail")
	}
}

func TestVersionCommand(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "Version:") || !strings.Contains(out, "Go:") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, err = env.run(t, "version", "--json")
	if err != nil {
		t.Fatalf("version --json failed: %v", err)
	}
	var info map[string]string
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if info["version"] == "" {
		t.Errorf("version missing: %v", info)
	}
}
