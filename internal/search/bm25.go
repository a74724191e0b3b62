package search

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
)

// SearchTerms performs BM25 keyword search over terms.
func (i *Indexer) SearchTerms(text string, limit int) ([]TermHit, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	searchRequest := bleve.NewSearchRequestOptions(i.buildLookupQuery(text), limit, 0, false)

	results, err := i.bleveIndex.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	return i.convertBleveResults(results), nil
}

// convertBleveResults joins hits back to catalogue entries by document ID.
func (i *Indexer) convertBleveResults(results *bleve.SearchResult) []TermHit {
	hits := make([]TermHit, 0, len(results.Hits))

	for _, hit := range results.Hits {
		idx, err := strconv.Atoi(hit.ID)
		if err != nil || idx < 0 || idx >= len(i.entries) {
			continue
		}
		e := i.entries[idx]

		hits = append(hits, TermHit{
			Term:  e.Term,
			V:     e.V,
			A:     e.A,
			D:     e.D,
			Score: hit.Score,
			Index: idx,
		})
	}

	return hits
}
