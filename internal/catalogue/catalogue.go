/*
Package catalogue loads the emotion term catalogue that backs the spatial index.

Two on-disk layouts are accepted:

  - delimiter-separated text (tab, comma or semicolon, sniffed from the
    header line) with a header row naming term, valence, arousal and
    dominance columns;
  - a JSON array of {"term", "valence", "arousal", "dominance"} objects.

Loading is best-effort: malformed rows are reported as warnings and skipped.
A catalogue that ends up empty is an error.
*/
package catalogue

import (
	"fmt"
	"math"
	"strings"

	"github.com/khanglvm/delta-ego/internal/vad"
)

// Catalogue is an immutable, ordered list of emotion entries.
type Catalogue struct {
	entries []vad.Entry
	byTerm  map[string][]int
}

// Warning describes a skipped row.
type Warning struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// LoadReport summarizes a load.
type LoadReport struct {
	Path     string    `json:"path"`
	Format   string    `json:"format"`
	Rows     int       `json:"rows"`
	Loaded   int       `json:"loaded"`
	Warnings []Warning `json:"warnings,omitempty"`
}

func (r *LoadReport) warn(line int, format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, Warning{Line: line, Reason: fmt.Sprintf(format, args...)})
}

// New builds a catalogue from entries held in memory.
// The first invalid entry aborts construction.
func New(entries []vad.Entry) (*Catalogue, error) {
	if len(entries) == 0 {
		return nil, &vad.DataLoadError{Reason: "catalogue is empty"}
	}
	for i, e := range entries {
		if reason := checkEntry(e); reason != "" {
			return nil, &vad.DataLoadError{Line: i + 1, Reason: reason}
		}
	}
	return build(entries), nil
}

func build(entries []vad.Entry) *Catalogue {
	c := &Catalogue{
		entries: make([]vad.Entry, len(entries)),
		byTerm:  make(map[string][]int, len(entries)),
	}
	copy(c.entries, entries)
	for i, e := range c.entries {
		key := termKey(e.Term)
		c.byTerm[key] = append(c.byTerm[key], i)
	}
	return c
}

// checkEntry returns a non-empty reason when the entry cannot be indexed.
func checkEntry(e vad.Entry) string {
	if strings.TrimSpace(e.Term) == "" {
		return "empty term"
	}
	names := [3]string{"valence", "arousal", "dominance"}
	for axis, c := range [3]float64{e.V, e.A, e.D} {
		switch {
		case math.IsNaN(c) || math.IsInf(c, 0):
			return fmt.Sprintf("%s is not a finite number", names[axis])
		case c < -1 || c > 1:
			return fmt.Sprintf("%s %g outside [-1, 1]", names[axis], c)
		}
	}
	return ""
}

func termKey(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// Len returns the number of entries.
func (c *Catalogue) Len() int {
	return len(c.entries)
}

// Entry returns the i-th entry in insertion order.
func (c *Catalogue) Entry(i int) vad.Entry {
	return c.entries[i]
}

// Entries returns a copy of all entries in insertion order.
func (c *Catalogue) Entries() []vad.Entry {
	out := make([]vad.Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Find returns the indexes of entries whose term equals term, ignoring case.
func (c *Catalogue) Find(term string) []int {
	idx := c.byTerm[termKey(term)]
	if len(idx) == 0 {
		return nil
	}
	out := make([]int, len(idx))
	copy(out, idx)
	return out
}
