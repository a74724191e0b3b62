/*
Package session holds the per-actor state that ties searches to analysis.

Every successful search appends the query point to the actor's trajectory;
Analyze runs the affective dynamics engine over that trajectory using the
newest sample as current and the one before it as previous.

A Session is not safe for concurrent use. The Searcher it wraps is shared
and read-only, so many sessions may run in parallel as long as each one is
driven by a single goroutine or guarded by the caller.
*/
package session

import (
	"log"
	"time"

	"github.com/khanglvm/delta-ego/internal/ego"
	"github.com/khanglvm/delta-ego/internal/search"
	"github.com/khanglvm/delta-ego/internal/tracking"
	"github.com/khanglvm/delta-ego/internal/vad"
)

// Recorder receives every successful search.
type Recorder interface {
	Track(event tracking.SearchEvent)
}

// Options configure a session.
type Options struct {
	// HistoryLimit caps the retained trajectory; 0 keeps everything.
	HistoryLimit int

	// AnalysisLimit caps the retained analysis results; 0 keeps everything.
	AnalysisLimit int

	// AutoAnalyze runs Analyze after every successful search.
	AutoAnalyze bool

	// Session-wide engine overrides; per-call options win field by field.
	Axis      *ego.Axis
	Weights   *ego.Weights
	Variables *ego.Variables

	// Recorder, when set, is told about every search.
	Recorder Recorder

	// Clock stamps samples; defaults to time.Now.
	Clock func() time.Time
}

// AnalyzeOptions override the session parameters for one analysis.
type AnalyzeOptions struct {
	Axis      *ego.Axis
	Weights   *ego.Weights
	Variables *ego.Variables

	// Discard skips appending the result to the analysis history.
	Discard bool
}

// Session is one actor's trajectory and analysis history.
type Session struct {
	actor    string
	searcher *search.Searcher
	opts     Options

	history  *ring[vad.Point]
	analyses *ring[ego.AnalysisResult]
}

// New creates a session for actor over s.
func New(actor string, s *search.Searcher, opts Options) *Session {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Session{
		actor:    actor,
		searcher: s,
		opts:     opts,
		history:  newRing[vad.Point](opts.HistoryLimit),
		analyses: newRing[ego.AnalysisResult](opts.AnalysisLimit),
	}
}

// Actor returns the session owner.
func (s *Session) Actor() string {
	return s.actor
}

// Search runs q and, on success, records the query point as the newest
// sample. A failed search leaves the session unchanged.
func (s *Session) Search(q search.Query) (*search.Response, error) {
	resp, err := s.searcher.Search(q)
	if err != nil {
		return nil, err
	}

	now := s.opts.Clock()
	resp.SearchID = tracking.NewSearchID()
	s.Observe(vad.Point{V: q.V, A: q.A, D: q.D, Timestamp: seconds(now), Owner: s.actor})

	if s.opts.Recorder != nil {
		s.opts.Recorder.Track(tracking.NewSearchEvent(s.actor, resp, now))
	}

	if s.opts.AutoAnalyze {
		if _, err := s.Analyze(AnalyzeOptions{}); err != nil {
			log.Printf("Warning: automatic analysis for %s failed: %v", s.actor, err)
		}
	}

	return resp, nil
}

// Observe appends an externally produced sample to the trajectory.
// An empty owner is filled with the session actor.
func (s *Session) Observe(p vad.Point) {
	if p.Owner == "" {
		p.Owner = s.actor
	}
	s.history.Push(p)
}

// Analyze runs the engine over the retained trajectory. It returns a
// *vad.AnalysisPreconditionError when nothing has been observed yet.
func (s *Session) Analyze(opts AnalyzeOptions) (*ego.AnalysisResult, error) {
	n := s.history.Len()
	if n == 0 {
		return nil, &vad.AnalysisPreconditionError{Reason: "no search has been made for " + s.actor}
	}

	current := s.history.At(n - 1)
	var prev *vad.Point
	if n >= 2 {
		p := s.history.At(n - 2)
		prev = &p
	}

	res, err := ego.Compute(ego.ComputeInput{
		Current:     &current,
		Prev:        prev,
		History:     s.history.Items(),
		EmotionBase: s.opts.Axis.Merge(opts.Axis),
		Weights:     s.opts.Weights.Merge(opts.Weights),
		Variables:   s.opts.Variables.Merge(opts.Variables),
	})
	if err != nil {
		return nil, err
	}

	if !opts.Discard {
		s.analyses.Push(*res)
	}
	return res, nil
}

// LastSample returns the newest sample, or false when there is none.
func (s *Session) LastSample() (vad.Point, bool) {
	if s.history.Len() == 0 {
		return vad.Point{}, false
	}
	return s.history.At(s.history.Len() - 1), true
}

// LastAnalysis returns the newest retained analysis, or nil.
func (s *Session) LastAnalysis() *ego.AnalysisResult {
	n := s.analyses.Len()
	if n == 0 {
		return nil
	}
	res := s.analyses.At(n - 1)
	return &res
}

// History returns a copy of the trajectory, oldest first.
func (s *Session) History() []vad.Point {
	return s.history.Items()
}

// AnalysisHistory returns a copy of the retained analyses, oldest first.
func (s *Session) AnalysisHistory() []ego.AnalysisResult {
	return s.analyses.Items()
}

// Trim keeps only the newest n samples of the trajectory.
func (s *Session) Trim(n int) {
	s.history.Keep(n)
}

// Reset clears the trajectory and the analysis history.
func (s *Session) Reset() {
	s.history.Reset()
	s.analyses.Reset()
}

func seconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}
