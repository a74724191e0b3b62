package search

import (
	"fmt"
	"math"
	"sort"

	"github.com/khanglvm/delta-ego/internal/catalogue"
	"github.com/khanglvm/delta-ego/internal/kdtree"
	"github.com/khanglvm/delta-ego/internal/vad"
)

// Query is a single similarity request.
type Query struct {
	V, A, D float64

	// K is the number of results; values above the catalogue size are
	// clamped to it.
	K int

	// Radius bounds knn_d and scales the "d" similarity.
	Radius float64

	// Sigma is the Gaussian bandwidth for gauss_w, gauss and gauss_w similarity.
	Sigma float64

	Mode string
}

// Point returns the query coordinates.
func (q Query) Point() vad.Vec3 {
	return vad.Vec3{X: q.V, Y: q.A, Z: q.D}
}

// Searcher runs queries against one immutable catalogue.
// It is safe for concurrent use.
type Searcher struct {
	catalogue *catalogue.Catalogue
	tree      *kdtree.Tree
	indexer   *Indexer
}

// NewSearcher builds the spatial index and the term index for c.
func NewSearcher(c *catalogue.Catalogue) (*Searcher, error) {
	entries := c.Entries()

	indexer, err := NewIndexer()
	if err != nil {
		return nil, err
	}
	if err := indexer.IndexEntries(entries); err != nil {
		indexer.Close()
		return nil, err
	}

	return &Searcher{
		catalogue: c,
		tree:      kdtree.Build(entries),
		indexer:   indexer,
	}, nil
}

// Catalogue returns the catalogue being searched.
func (s *Searcher) Catalogue() *catalogue.Catalogue {
	return s.catalogue
}

// Tree returns the spatial index.
func (s *Searcher) Tree() *kdtree.Tree {
	return s.tree
}

// Close releases the term index.
func (s *Searcher) Close() error {
	return s.indexer.Close()
}

// Search ranks catalogue entries for q. Invalid input returns a
// *vad.InvalidQueryError and has no side effects.
func (s *Searcher) Search(q Query) (*Response, error) {
	mode, err := ParseMode(q.Mode)
	if err != nil {
		return nil, err
	}
	k, err := s.validate(q, mode)
	if err != nil {
		return nil, err
	}

	point := q.Point()
	var results []Result

	switch mode.Base {
	case BaseKNN:
		results = s.fromNeighbors(s.tree.Nearest(point, k), func(n kdtree.Neighbor) float64 {
			return n.Distance()
		})
	case BaseRadius:
		results = s.fromNeighbors(s.tree.Within(point, q.Radius, k), func(n kdtree.Neighbor) float64 {
			return n.Distance()
		})
	case BaseGauss:
		results = s.fromNeighbors(s.tree.Nearest(point, k), func(n kdtree.Neighbor) float64 {
			return gaussKernel(n.Dist2, q.Sigma)
		})
		// Weights that underflow to the same value tie on score, not distance.
		sortByScore(results)
	case BaseCosine:
		results = s.cosineScan(point, k)
	}

	in := similarityInput{radius: q.Radius, sigma: q.Sigma, scale: s.tree.AxisScale()}
	for i := range results {
		results[i].Rank = i + 1
		annotate(&results[i], mode, point, in)
	}

	return &Response{
		Query:   QueryPoint{V: q.V, A: q.A, D: q.D, K: k, Radius: q.Radius, Sigma: q.Sigma},
		Mode:    mode.String(),
		Results: results,
		Count:   len(results),
	}, nil
}

// validate checks q and returns the effective k.
func (s *Searcher) validate(q Query, mode Mode) (int, error) {
	coords := []struct {
		name  string
		value float64
	}{{"valence", q.V}, {"arousal", q.A}, {"dominance", q.D}}
	for _, c := range coords {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) || c.value < -1 || c.value > 1 {
			return 0, &vad.InvalidQueryError{Field: c.name, Reason: fmt.Sprintf("%g outside [-1, 1]", c.value)}
		}
	}

	if q.K <= 0 {
		return 0, &vad.InvalidQueryError{Field: "k", Reason: fmt.Sprintf("must be positive, got %d", q.K)}
	}

	if mode.Base == BaseRadius || mode.Similarity == MetricRelative {
		if math.IsNaN(q.Radius) || q.Radius < 0 {
			return 0, &vad.InvalidQueryError{Field: "radius", Reason: fmt.Sprintf("must be non-negative, got %g", q.Radius)}
		}
	}

	if mode.Base == BaseGauss || mode.Similarity.usesSigma() {
		if math.IsNaN(q.Sigma) || math.IsInf(q.Sigma, 0) || q.Sigma <= 0 {
			return 0, &vad.InvalidQueryError{Field: "sigma", Reason: fmt.Sprintf("must be positive, got %g", q.Sigma)}
		}
	}

	k := q.K
	if n := s.tree.Len(); k > n {
		k = n
	}
	return k, nil
}

func (s *Searcher) fromNeighbors(hits []kdtree.Neighbor, score func(kdtree.Neighbor) float64) []Result {
	results := make([]Result, len(hits))
	for i, n := range hits {
		results[i] = s.result(n.Index, n.Dist2)
		results[i].Score = score(n)
	}
	return results
}

func (s *Searcher) result(idx int, d2 float64) Result {
	e := s.tree.Entry(idx)
	return Result{
		Term:            e.Term,
		V:               e.V,
		A:               e.A,
		D:               e.D,
		Distance:        math.Sqrt(d2),
		DistanceSquared: d2,
		Index:           idx,
	}
}

// cosineScan ranks every entry by cosine similarity, highest first.
func (s *Searcher) cosineScan(q vad.Vec3, k int) []Result {
	results := make([]Result, 0, s.tree.Len())
	s.tree.Scan(func(i int, e vad.Entry) {
		p := e.Vec()
		r := s.result(i, q.Dist2(p))
		r.Score = cosineSimilarity(q, p)
		results = append(results, r)
	})

	sortByScore(results)
	if len(results) > k {
		results = results[:k]
	}
	return results
}

// sortByScore orders results by descending score, then catalogue index.
func sortByScore(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Index < results[j].Index
	})
}

// annotate attaches the similarity fields selected by the mode flag.
func annotate(r *Result, mode Mode, q vad.Vec3, in similarityInput) {
	if mode.Detail == DetailBare {
		return
	}

	pct := Percent(similarity(mode.Similarity, q, vad.Vec3{X: r.V, Y: r.A, Z: r.D}, r.DistanceSquared, in))
	r.SimilarityMetric = mode.Similarity.label()

	switch mode.Detail {
	case DetailSimplified:
		r.Expression = Expression(pct) + " " + r.Term
	default:
		r.SimilarityPercent = &pct
		if mode.Similarity.usesSigma() {
			r.Expression = Expression(pct) + " " + r.Term
		}
	}
}
