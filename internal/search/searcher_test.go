package search

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/khanglvm/delta-ego/internal/catalogue"
	"github.com/khanglvm/delta-ego/internal/vad"
)

func newTestSearcher(t *testing.T, entries []vad.Entry) *Searcher {
	t.Helper()
	c, err := catalogue.New(entries)
	if err != nil {
		t.Fatalf("catalogue.New failed: %v", err)
	}
	s, err := NewSearcher(c)
	if err != nil {
		t.Fatalf("NewSearcher failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var basicEntries = []vad.Entry{
	{Term: "joy", V: 0.8, A: 0.6, D: 0.7},
	{Term: "fear", V: -0.7, A: 0.8, D: -0.6},
	{Term: "calm", V: 0.4, A: -0.6, D: 0.2},
}

func TestSearchKNNNearestTerm(t *testing.T) {
	s := newTestSearcher(t, basicEntries)

	resp, err := s.Search(Query{V: 0.75, A: 0.55, D: 0.65, K: 1, Mode: "knn"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if resp.Count != 1 {
		t.Fatalf("expected 1 result, got %d", resp.Count)
	}

	top := resp.Top()
	if top.Term != "joy" {
		t.Errorf("expected joy, got %s", top.Term)
	}
	if math.Abs(top.Distance-0.0866) > 1e-4 {
		t.Errorf("distance = %v, want ~0.0866", top.Distance)
	}
	if top.Rank != 1 || top.Score != top.Distance {
		t.Errorf("unexpected rank/score: %+v", top)
	}
}

func TestSearchClampsK(t *testing.T) {
	s := newTestSearcher(t, basicEntries)

	resp, err := s.Search(Query{V: 0, A: 0, D: 0, K: 50})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if resp.Count != 3 || resp.Query.K != 3 {
		t.Fatalf("expected k clamped to 3, got count %d k %d", resp.Count, resp.Query.K)
	}
	for i := 1; i < len(resp.Results); i++ {
		if resp.Results[i].Distance < resp.Results[i-1].Distance {
			t.Errorf("knn results not ascending at %d", i)
		}
	}
}

func TestSearchRadius(t *testing.T) {
	s := newTestSearcher(t, basicEntries)

	resp, err := s.Search(Query{V: 0.75, A: 0.55, D: 0.65, K: 3, Radius: 0.2, Mode: "knn_d"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if resp.Count != 1 || resp.Results[0].Term != "joy" {
		t.Errorf("expected only joy within 0.2, got %+v", resp.Results)
	}

	resp, err = s.Search(Query{V: 0, A: 0, D: -1, K: 3, Radius: 0.01, Mode: "knn_d"})
	if err != nil {
		t.Fatalf("empty radius search should not fail: %v", err)
	}
	if resp.Count != 0 {
		t.Errorf("expected empty result, got %+v", resp.Results)
	}
}

func TestSearchCosine(t *testing.T) {
	s := newTestSearcher(t, basicEntries)

	resp, err := s.Search(Query{V: 1, A: 0, D: 0, K: 3, Mode: "cos"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	want := []string{"joy", "calm", "fear"}
	for i, term := range want {
		if resp.Results[i].Term != term {
			t.Errorf("rank %d: got %s, want %s", i+1, resp.Results[i].Term, term)
		}
	}
	if math.Abs(resp.Results[0].Score-0.8/math.Sqrt(1.49)) > 1e-9 {
		t.Errorf("joy cosine = %v", resp.Results[0].Score)
	}

	zero, err := s.Search(Query{K: 2, Mode: "cos"})
	if err != nil {
		t.Fatalf("zero query failed: %v", err)
	}
	if zero.Results[0].Score != 0 || zero.Results[0].Term != "joy" || zero.Results[1].Term != "fear" {
		t.Errorf("zero query should score 0 in insertion order, got %+v", zero.Results)
	}
}

func TestSearchGauss(t *testing.T) {
	s := newTestSearcher(t, basicEntries)

	resp, err := s.Search(Query{V: 0.5, A: 0, D: 0.3, K: 3, Sigma: 0.5, Mode: "gauss_w"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	for i, r := range resp.Results {
		want := math.Exp(-r.DistanceSquared / (2 * 0.25))
		if math.Abs(r.Score-want) > 1e-12 {
			t.Errorf("result %d: score %v, want %v", i, r.Score, want)
		}
		if i > 0 && r.Score > resp.Results[i-1].Score {
			t.Errorf("gauss scores not descending at %d", i)
		}
	}
}

func TestSearchGaussUnderflowTiesKeepInsertionOrder(t *testing.T) {
	s := newTestSearcher(t, []vad.Entry{
		{Term: "despair", V: -1, A: -1, D: -1},
		{Term: "gloom", V: -0.9, A: -0.9, D: -0.9},
		{Term: "elation", V: 1, A: 1, D: 1},
	})

	resp, err := s.Search(Query{V: 1, A: 1, D: 1, K: 3, Sigma: 1e-3, Mode: "gauss_w"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	want := []string{"elation", "despair", "gloom"}
	for i, r := range resp.Results {
		if r.Term != want[i] {
			t.Errorf("result %d = %q (score %v), want %q", i, r.Term, r.Score, want[i])
		}
		if r.Rank != i+1 {
			t.Errorf("result %d has rank %d", i, r.Rank)
		}
	}
	if resp.Results[1].Score != 0 || resp.Results[2].Score != 0 {
		t.Errorf("far entries should underflow to 0, got %v and %v", resp.Results[1].Score, resp.Results[2].Score)
	}
}

func TestSearchAnnotations(t *testing.T) {
	s := newTestSearcher(t, basicEntries)
	q := Query{V: 0.75, A: 0.55, D: 0.65, K: 1, Radius: 0.1, Sigma: 0.5}

	tests := []struct {
		mode        string
		wantPercent int // -1 means absent
		wantMetric  string
		wantExpr    string
	}{
		{"knn -B", -1, "", ""},
		{"knn~d -E", 25, "d", ""},
		{"knn~d -S", -1, "d", "somewhat joy"},
		{"knn~l2 -S", -1, "l2", "absolute joy"},
		{"knn~none -E", -2, "l2", ""},
		{"knn~gauss -E", 99, "gauss", "absolute joy"},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			q.Mode = tt.mode
			resp, err := s.Search(q)
			if err != nil {
				t.Fatalf("Search failed: %v", err)
			}
			r := resp.Results[0]

			switch {
			case tt.wantPercent == -1 && r.SimilarityPercent != nil:
				t.Errorf("expected no percent, got %d", *r.SimilarityPercent)
			case tt.wantPercent == -2 && (r.SimilarityPercent == nil || *r.SimilarityPercent < 97):
				t.Errorf("expected high l2 percent, got %v", r.SimilarityPercent)
			case tt.wantPercent >= 0 && (r.SimilarityPercent == nil || *r.SimilarityPercent != tt.wantPercent):
				t.Errorf("percent = %v, want %d", r.SimilarityPercent, tt.wantPercent)
			}
			if r.SimilarityMetric != tt.wantMetric {
				t.Errorf("metric = %q, want %q", r.SimilarityMetric, tt.wantMetric)
			}
			if r.Expression != tt.wantExpr {
				t.Errorf("expression = %q, want %q", r.Expression, tt.wantExpr)
			}
		})
	}
}

func TestSearchRejectsInvalidQueries(t *testing.T) {
	s := newTestSearcher(t, basicEntries)

	tests := []struct {
		name  string
		query Query
		field string
	}{
		{"zero k", Query{K: 0}, "k"},
		{"negative k", Query{K: -2}, "k"},
		{"valence out of range", Query{V: 1.5, K: 1}, "valence"},
		{"nan arousal", Query{A: math.NaN(), K: 1}, "arousal"},
		{"unknown mode", Query{K: 1, Mode: "nearest"}, "mode"},
		{"negative radius", Query{K: 1, Radius: -0.1, Mode: "knn_d"}, "radius"},
		{"zero sigma", Query{K: 1, Mode: "gauss_w"}, "sigma"},
		{"zero sigma similarity", Query{K: 1, Mode: "knn~gauss_w"}, "sigma"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Search(tt.query)
			var iqe *vad.InvalidQueryError
			if !errors.As(err, &iqe) {
				t.Fatalf("expected InvalidQueryError, got %v", err)
			}
			if iqe.Field != tt.field {
				t.Errorf("field = %q, want %q", iqe.Field, tt.field)
			}
		})
	}
}

func TestSearchMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	entries := make([]vad.Entry, 300)
	for i := range entries {
		entries[i] = vad.Entry{Term: "e", V: rng.Float64()*2 - 1, A: rng.Float64()*2 - 1, D: rng.Float64()*2 - 1}
	}
	s := newTestSearcher(t, entries)

	for i := 0; i < 100; i++ {
		q := Query{V: rng.Float64()*2 - 1, A: rng.Float64()*2 - 1, D: rng.Float64()*2 - 1, K: 1}
		resp, err := s.Search(q)
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}

		best, bestD2 := -1, math.Inf(1)
		for j, e := range entries {
			if d2 := q.Point().Dist2(e.Vec()); d2 < bestD2 {
				best, bestD2 = j, d2
			}
		}
		if resp.Results[0].Index != best {
			t.Fatalf("query %d: got index %d, want %d", i, resp.Results[0].Index, best)
		}

		q.Mode, q.Radius, q.K = "knn_d", 0.5, len(entries)
		within, err := s.Search(q)
		if err != nil {
			t.Fatalf("radius search failed: %v", err)
		}
		q.Mode = "knn"
		all, _ := s.Search(q)
		for j, r := range within.Results {
			if r.DistanceSquared > 0.25 {
				t.Fatalf("hit outside radius: %v", r.Distance)
			}
			if all.Results[j].Index != r.Index {
				t.Fatalf("radius result is not a prefix of knn at %d", j)
			}
		}
		if n := within.Count; n < len(all.Results) && all.Results[n].DistanceSquared <= 0.25 {
			t.Fatalf("radius search missed entry at distance %v", all.Results[n].Distance)
		}
	}
}

func TestExpression(t *testing.T) {
	tests := []struct {
		percent int
		want    string
	}{
		{0, "negligible"}, {5, "negligible"}, {6, "mild"}, {20, "mild"},
		{21, "somewhat"}, {40, "somewhat"}, {60, "moderate"}, {61, "quite"},
		{95, "intense"}, {96, "absolute"}, {100, "absolute"},
	}

	for _, tt := range tests {
		if got := Expression(tt.percent); got != tt.want {
			t.Errorf("Expression(%d) = %q, want %q", tt.percent, got, tt.want)
		}
	}
}

func TestSimilarityMetrics(t *testing.T) {
	q := vad.Vec3{X: 0.5}
	in := similarityInput{radius: 1, sigma: 0.5, scale: vad.Vec3{X: 1, Y: 1, Z: 1}}

	if got := similarity(MetricRelative, q, q, 0, in); got != 1 {
		t.Errorf("relative at zero distance = %v", got)
	}
	if got := similarity(MetricRelative, q, vad.Vec3{X: -0.5}, 1, in); got != 0 {
		t.Errorf("relative at the radius = %v", got)
	}
	if got := similarity(MetricCosine, q, vad.Vec3{}, 0.25, in); got != 0.5 {
		t.Errorf("cosine against zero vector = %v, want 0.5", got)
	}
	if got := similarity(MetricL2, vad.Vec3{X: -1, Y: -1, Z: -1}, vad.Vec3{X: 1, Y: 1, Z: 1}, 12, in); got != 0 {
		t.Errorf("l2 across the cube = %v", got)
	}

	g := similarity(MetricGauss, q, vad.Vec3{X: 1}, 0.25, in)
	gw := similarity(MetricGaussWhitened, q, vad.Vec3{X: 1}, 0.25, in)
	if math.Abs(g-gw) > 1e-12 {
		t.Errorf("whitened gauss with unit scale should equal gauss: %v vs %v", g, gw)
	}

	in.scale.X = 0.5
	if narrow := similarity(MetricGaussWhitened, q, vad.Vec3{X: 1}, 0.25, in); narrow >= g {
		t.Errorf("smaller axis scale should lower similarity: %v >= %v", narrow, g)
	}
}
