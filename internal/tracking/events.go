/*
Package tracking records catalogue searches in the background.

Searches are queued on a buffered channel and flushed to storage in small
batches by a single goroutine, so recording never blocks or fails a query.
*/
package tracking

import (
	"time"

	"github.com/google/uuid"

	"github.com/khanglvm/delta-ego/internal/search"
	"github.com/khanglvm/delta-ego/internal/storage"
)

// SearchEvent is one successful search.
type SearchEvent struct {
	SearchID     string
	Actor        string
	Mode         string
	V, A, D      float64
	K            int
	ResultsCount int
	TopTerm      string
	Timestamp    time.Time
}

// NewSearchID returns a fresh search identifier.
func NewSearchID() string {
	return uuid.NewString()
}

// NewSearchEvent builds the event for a completed search.
func NewSearchEvent(actor string, resp *search.Response, at time.Time) SearchEvent {
	e := SearchEvent{
		SearchID:     resp.SearchID,
		Actor:        actor,
		Mode:         resp.Mode,
		V:            resp.Query.V,
		A:            resp.Query.A,
		D:            resp.Query.D,
		K:            resp.Query.K,
		ResultsCount: resp.Count,
		Timestamp:    at,
	}
	if e.SearchID == "" {
		e.SearchID = NewSearchID()
	}
	if top := resp.Top(); top != nil {
		e.TopTerm = top.Term
	}
	return e
}

// ToStorage converts the event to its storage model.
func (e SearchEvent) ToStorage() storage.SearchRecord {
	return storage.SearchRecord{
		SearchID:     e.SearchID,
		Actor:        e.Actor,
		Mode:         e.Mode,
		V:            e.V,
		A:            e.A,
		D:            e.D,
		K:            e.K,
		ResultsCount: e.ResultsCount,
		TopTerm:      e.TopTerm,
		Timestamp:    e.Timestamp,
	}
}
