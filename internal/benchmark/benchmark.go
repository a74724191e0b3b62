/*
Package benchmark measures nearest-neighbour latency for delta-ego.

It compares two ways of answering the same k-nearest query:
1. KD-tree: the indexed search used by every knn, knn_d and gauss_w query
2. Linear: a full scan of the catalogue sorted by squared distance

Both run over the same seeded random query points, so the agreement figure
doubles as a correctness check of the index.
*/
package benchmark

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/khanglvm/delta-ego/internal/kdtree"
	"github.com/khanglvm/delta-ego/internal/vad"
)

// Options control a benchmark run.
type Options struct {
	Queries int
	K       int
	Seed    int64
}

// DefaultOptions are used by the CLI when no flags are given.
func DefaultOptions() Options {
	return Options{Queries: 1000, K: 5, Seed: 1}
}

// Latency summarises per-query durations in microseconds.
type Latency struct {
	Mean float64 `json:"meanMicros"`
	P50  float64 `json:"p50Micros"`
	P95  float64 `json:"p95Micros"`
}

// BenchmarkResult contains comparison results.
type BenchmarkResult struct {
	CatalogueSize int     `json:"catalogueSize"`
	TreeDepth     int     `json:"treeDepth"`
	Queries       int     `json:"queries"`
	K             int     `json:"k"`
	KDTree        Latency `json:"kdTree"`
	Linear        Latency `json:"linear"`
	Speedup       float64 `json:"speedup"`

	// Agreement is the fraction of queries whose ranked indices matched.
	Agreement float64 `json:"agreement"`
}

// RunBenchmark times tree and linear search over random points in the cube.
func RunBenchmark(tree *kdtree.Tree, opts Options) (*BenchmarkResult, error) {
	if tree.Len() == 0 {
		return nil, fmt.Errorf("benchmark needs a non-empty catalogue")
	}
	if opts.Queries <= 0 {
		return nil, fmt.Errorf("queries must be positive, got %d", opts.Queries)
	}
	if opts.K <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", opts.K)
	}
	k := opts.K
	if k > tree.Len() {
		k = tree.Len()
	}

	points := make([]vad.Vec3, tree.Len())
	tree.Scan(func(i int, e vad.Entry) {
		points[i] = e.Vec()
	})

	rng := rand.New(rand.NewSource(opts.Seed))
	kdTimes := make([]float64, opts.Queries)
	linTimes := make([]float64, opts.Queries)
	agree := 0

	for i := 0; i < opts.Queries; i++ {
		q := vad.Vec3{X: rng.Float64()*2 - 1, Y: rng.Float64()*2 - 1, Z: rng.Float64()*2 - 1}

		start := time.Now()
		fast := tree.Nearest(q, k)
		kdTimes[i] = micros(time.Since(start))

		start = time.Now()
		slow := linearNearest(points, q, k)
		linTimes[i] = micros(time.Since(start))

		if sameIndices(fast, slow) {
			agree++
		}
	}

	result := &BenchmarkResult{
		CatalogueSize: tree.Len(),
		TreeDepth:     tree.Depth(),
		Queries:       opts.Queries,
		K:             k,
		KDTree:        summarize(kdTimes),
		Linear:        summarize(linTimes),
		Agreement:     float64(agree) / float64(opts.Queries),
	}
	if result.KDTree.Mean > 0 {
		result.Speedup = result.Linear.Mean / result.KDTree.Mean
	}
	return result, nil
}

func linearNearest(points []vad.Vec3, q vad.Vec3, k int) []int {
	type hit struct {
		idx int
		d2  float64
	}
	hits := make([]hit, len(points))
	for i, p := range points {
		hits[i] = hit{idx: i, d2: p.Dist2(q)}
	}
	sort.Slice(hits, func(a, b int) bool {
		if hits[a].d2 != hits[b].d2 {
			return hits[a].d2 < hits[b].d2
		}
		return hits[a].idx < hits[b].idx
	})

	out := make([]int, k)
	for i := range out {
		out[i] = hits[i].idx
	}
	return out
}

func sameIndices(tree []kdtree.Neighbor, linear []int) bool {
	if len(tree) != len(linear) {
		return false
	}
	for i, n := range tree {
		if n.Index != linear[i] {
			return false
		}
	}
	return true
}

func summarize(samples []float64) Latency {
	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)
	return Latency{
		Mean: stat.Mean(sorted, nil),
		P50:  stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P95:  stat.Quantile(0.95, stat.Empirical, sorted, nil),
	}
}

func micros(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e3
}

// FormatResult formats the benchmark result for display.
func FormatResult(result *BenchmarkResult) string {
	var sb strings.Builder

	sb.WriteString("╔══════════════════════════════════════════════════════════════╗\n")
	sb.WriteString("║             NEAREST NEIGHBOUR BENCHMARK RESULTS              ║\n")
	sb.WriteString("╠══════════════════════════════════════════════════════════════╣\n")
	sb.WriteString(fmt.Sprintf("║  Catalogue: %-8d entries   Tree depth: %-4d               ║\n", result.CatalogueSize, result.TreeDepth))
	sb.WriteString(fmt.Sprintf("║  Queries:   %-8d           k: %-4d                        ║\n", result.Queries, result.K))
	sb.WriteString("╠══════════════════════════════════════════════════════════════╣\n")
	sb.WriteString("║  🌲 KD-TREE                                                   ║\n")
	sb.WriteString(formatLatency(result.KDTree))
	sb.WriteString("╠══════════════════════════════════════════════════════════════╣\n")
	sb.WriteString("║  📏 LINEAR SCAN                                               ║\n")
	sb.WriteString(formatLatency(result.Linear))
	sb.WriteString("╠══════════════════════════════════════════════════════════════╣\n")
	sb.WriteString(fmt.Sprintf("║  🚀 Speedup:   %-8.1fx                                     ║\n", result.Speedup))
	sb.WriteString(fmt.Sprintf("║  ✓ Agreement: %-6.1f%%                                        ║\n", result.Agreement*100))
	sb.WriteString("╚══════════════════════════════════════════════════════════════╝\n")

	return sb.String()
}

func formatLatency(l Latency) string {
	return fmt.Sprintf("║     mean %-9.2fµs  p50 %-9.2fµs  p95 %-9.2fµs      ║\n", l.Mean, l.P50, l.P95)
}
