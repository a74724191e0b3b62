package search

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/khanglvm/delta-ego/internal/vad"
)

// Indexer is an in-memory full-text index over catalogue terms.
type Indexer struct {
	bleveIndex bleve.Index
	entries    []vad.Entry
	mu         sync.RWMutex
}

// NewIndexer creates an empty in-memory term index.
func NewIndexer() (*Indexer, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}

	return &Indexer{bleveIndex: index}, nil
}

// buildIndexMapping indexes only the term text; coordinates are kept in
// the entries slice and joined back by document ID.
func buildIndexMapping() mapping.IndexMapping {
	termMapping := bleve.NewDocumentMapping()

	termFieldMapping := bleve.NewTextFieldMapping()
	termFieldMapping.Store = false
	termMapping.AddFieldMappingsAt("term", termFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = termMapping

	return indexMapping
}

// IndexEntries replaces the indexed terms with entries. Document IDs are
// catalogue positions.
func (i *Indexer) IndexEntries(entries []vad.Entry) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	batch := i.bleveIndex.NewBatch()
	for idx, e := range entries {
		if err := batch.Index(strconv.Itoa(idx), map[string]interface{}{"term": e.Term}); err != nil {
			log.Printf("Warning: failed to index term %q: %v", e.Term, err)
		}
	}

	if err := i.bleveIndex.Batch(batch); err != nil {
		return fmt.Errorf("failed to batch index terms: %w", err)
	}

	i.entries = make([]vad.Entry, len(entries))
	copy(i.entries, entries)
	return nil
}

// Count returns the number of indexed terms.
func (i *Indexer) Count() (uint64, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	docCount, err := i.bleveIndex.DocCount()
	if err != nil {
		return 0, fmt.Errorf("failed to get doc count: %w", err)
	}

	return docCount, nil
}

// Close closes the index and releases resources.
func (i *Indexer) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.bleveIndex != nil {
		return i.bleveIndex.Close()
	}

	return nil
}

// buildLookupQuery matches whole words with one edit of slack, or any term
// starting with the text.
func (i *Indexer) buildLookupQuery(text string) query.Query {
	match := bleve.NewMatchQuery(text)
	match.SetField("term")
	match.SetFuzziness(1)

	prefix := bleve.NewPrefixQuery(strings.ToLower(text))
	prefix.SetField("term")

	return bleve.NewDisjunctionQuery(match, prefix)
}
