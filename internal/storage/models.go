package storage

import "time"

// SearchRecord is one logged catalogue search.
type SearchRecord struct {
	// SearchID is a unique identifier for this search (UUID).
	SearchID string `json:"search_id"`

	// Actor is the session owner that issued the search.
	Actor string `json:"actor"`

	// Mode is the canonical mode string the search ran with.
	Mode string `json:"mode"`

	V float64 `json:"valence"`
	A float64 `json:"arousal"`
	D float64 `json:"dominance"`

	// K is the effective result count requested.
	K int `json:"k"`

	// ResultsCount is the number of results returned.
	ResultsCount int `json:"results_count"`

	// TopTerm is the best-ranked term, empty when nothing matched.
	TopTerm string `json:"top_term,omitempty"`

	// Timestamp is when the search was performed.
	Timestamp time.Time `json:"timestamp"`
}

// Stats summarizes the search log.
type Stats struct {
	Searches int       `json:"searches"`
	Actors   int       `json:"actors"`
	Oldest   time.Time `json:"oldest,omitempty"`
	Newest   time.Time `json:"newest,omitempty"`
}
