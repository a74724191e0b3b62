/*
Package search answers similarity queries against the emotion catalogue.

A Searcher owns the KD-tree built from the catalogue plus an in-memory bleve
index over the terms. Queries carry a mode string of the form

	base[~similarity][ -F]

where base selects the ranking (knn, knn_d, cos, gauss_w), similarity selects
the metric used to annotate each hit with a percentage (l2, d, cos, gauss,
gauss_w) and the flag selects how much of that annotation is returned.
*/
package search

// QueryPoint echoes the query coordinates and parameters in a response.
type QueryPoint struct {
	V      float64 `json:"valence"`
	A      float64 `json:"arousal"`
	D      float64 `json:"dominance"`
	K      int     `json:"k"`
	Radius float64 `json:"radius,omitempty"`
	Sigma  float64 `json:"sigma,omitempty"`
}

// Result is one ranked catalogue entry.
type Result struct {
	Rank            int     `json:"rank"`
	Term            string  `json:"term"`
	V               float64 `json:"valence"`
	A               float64 `json:"arousal"`
	D               float64 `json:"dominance"`
	Distance        float64 `json:"distance"`
	DistanceSquared float64 `json:"distance_pow2"`

	// Score is the ranking value: distance for knn and knn_d, cosine for
	// cos, kernel value for gauss_w.
	Score float64 `json:"score"`

	SimilarityPercent *int   `json:"similarity_percent,omitempty"`
	SimilarityMetric  string `json:"similarity_metric,omitempty"`
	Expression        string `json:"emotion_simplified,omitempty"`

	// Index is the catalogue position of the entry.
	Index int `json:"-"`
}

// Response is the outcome of one query.
type Response struct {
	// SearchID is assigned by the session that ran the search.
	SearchID string `json:"search_id,omitempty"`

	Query   QueryPoint `json:"query"`
	Mode    string     `json:"mode"`
	Results []Result   `json:"result"`
	Count   int        `json:"count"`
}

// Top returns the best result, or nil when there are none.
func (r *Response) Top() *Result {
	if len(r.Results) == 0 {
		return nil
	}
	return &r.Results[0]
}

// TermHit is a catalogue entry found by term lookup.
type TermHit struct {
	Term  string  `json:"term"`
	V     float64 `json:"valence"`
	A     float64 `json:"arousal"`
	D     float64 `json:"dominance"`
	Score float64 `json:"score"`
	Exact bool    `json:"exact"`
	Index int     `json:"index"`
}
