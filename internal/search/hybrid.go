package search

import (
	"sort"
	"strings"
)

// FusionConfig weights exact term matches against keyword relevance.
type FusionConfig struct {
	ExactWeight   float64
	KeywordWeight float64
}

// DefaultFusionConfig ranks exact matches above any keyword-only hit.
var DefaultFusionConfig = FusionConfig{
	ExactWeight:   0.7,
	KeywordWeight: 0.3,
}

// Lookup finds catalogue entries by term text. Exact (case-insensitive)
// matches come first, followed by fuzzy and prefix keyword hits.
func (s *Searcher) Lookup(text string, limit int) ([]TermHit, error) {
	if limit <= 0 {
		limit = 10
	}
	text = strings.TrimSpace(text)

	var exact []TermHit
	for _, idx := range s.catalogue.Find(text) {
		e := s.catalogue.Entry(idx)
		exact = append(exact, TermHit{Term: e.Term, V: e.V, A: e.A, D: e.D, Exact: true, Index: idx})
	}

	keyword, err := s.indexer.SearchTerms(text, limit*2)
	if err != nil {
		return nil, err
	}

	fused := fuseScores(exact, keyword, DefaultFusionConfig)
	if len(fused) > limit {
		fused = fused[:limit]
	}
	return fused, nil
}

// fuseScores merges exact and keyword hits per catalogue index and orders
// them by combined score, then by catalogue position.
func fuseScores(exact, keyword []TermHit, config FusionConfig) []TermHit {
	keyword = normalizeScores(keyword)

	byIndex := make(map[int]TermHit, len(exact)+len(keyword))
	for _, hit := range keyword {
		hit.Score *= config.KeywordWeight
		byIndex[hit.Index] = hit
	}
	for _, hit := range exact {
		if prev, ok := byIndex[hit.Index]; ok {
			hit.Score = prev.Score
		}
		hit.Score += config.ExactWeight
		hit.Exact = true
		byIndex[hit.Index] = hit
	}

	fused := make([]TermHit, 0, len(byIndex))
	for _, hit := range byIndex {
		fused = append(fused, hit)
	}

	sort.Slice(fused, func(i, j int) bool {
		if fused[i].Score != fused[j].Score {
			return fused[i].Score > fused[j].Score
		}
		return fused[i].Index < fused[j].Index
	})

	return fused
}

// normalizeScores rescales scores to [0, 1]; equal scores all become 1.
func normalizeScores(hits []TermHit) []TermHit {
	if len(hits) == 0 {
		return hits
	}

	minScore, maxScore := hits[0].Score, hits[0].Score
	for _, hit := range hits {
		if hit.Score < minScore {
			minScore = hit.Score
		}
		if hit.Score > maxScore {
			maxScore = hit.Score
		}
	}

	normalized := make([]TermHit, len(hits))
	for i, hit := range hits {
		normalized[i] = hit
		if maxScore == minScore {
			normalized[i].Score = 1.0
		} else {
			normalized[i].Score = (hit.Score - minScore) / (maxScore - minScore)
		}
	}

	return normalized
}
