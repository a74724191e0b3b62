package search

import (
	"fmt"
	"strings"

	"github.com/khanglvm/delta-ego/internal/vad"
)

// Base selects how candidates are ranked.
type Base int

const (
	BaseKNN    Base = iota // k nearest by Euclidean distance
	BaseRadius             // all within a radius, nearest first
	BaseCosine             // cosine similarity, linear scan
	BaseGauss              // Gaussian kernel of the distance
)

var baseNames = map[Base]string{
	BaseKNN:    "knn",
	BaseRadius: "knn_d",
	BaseCosine: "cos",
	BaseGauss:  "gauss_w",
}

func (b Base) String() string { return baseNames[b] }

// Metric selects the similarity used for the percentage annotation.
type Metric int

const (
	MetricNone          Metric = iota // annotated as l2
	MetricL2                          // 1 - d / cube diameter
	MetricRelative                    // 1 - d²/radius²
	MetricCosine                      // (cos + 1) / 2
	MetricGauss                       // exp(-d²/2σ²)
	MetricGaussWhitened               // exp(-d²/2σ²) on axis-scaled deltas
)

var metricNames = map[Metric]string{
	MetricNone:          "none",
	MetricL2:            "l2",
	MetricRelative:      "d",
	MetricCosine:        "cos",
	MetricGauss:         "gauss",
	MetricGaussWhitened: "gauss_w",
}

func (m Metric) String() string { return metricNames[m] }

// label is the metric name reported on results.
func (m Metric) label() string {
	if m == MetricNone {
		return MetricL2.String()
	}
	return m.String()
}

func (m Metric) usesSigma() bool {
	return m == MetricGauss || m == MetricGaussWhitened
}

// Detail selects the output flag.
type Detail byte

const (
	DetailExpanded   Detail = 'E'
	DetailBare       Detail = 'B'
	DetailDistance   Detail = 'D' // same output as DetailExpanded
	DetailSimplified Detail = 'S'
)

// Mode is a parsed query mode.
type Mode struct {
	Base       Base
	Similarity Metric
	Detail     Detail
}

// DefaultMode is the mode used for an empty mode string.
var DefaultMode = Mode{Base: BaseKNN, Similarity: MetricNone, Detail: DetailExpanded}

// String renders the mode in canonical form, e.g. "knn~l2 -S".
func (m Mode) String() string {
	return m.Base.String() + "~" + m.Similarity.String() + " -" + string(m.Detail)
}

// ParseMode parses "base[~similarity][ -F]". Surrounding whitespace is
// ignored and an empty string yields DefaultMode. Unknown names, repeated
// flags or stray tokens return a *vad.InvalidQueryError.
func ParseMode(s string) (Mode, error) {
	m := DefaultMode
	var selector string
	seenFlag := false

	for _, tok := range strings.Fields(s) {
		if strings.HasPrefix(tok, "-") {
			if seenFlag {
				return Mode{}, modeError("more than one flag in %q", s)
			}
			seenFlag = true
			if len(tok) != 2 {
				return Mode{}, modeError("flag %q must be a single letter", tok)
			}
			switch d := Detail(strings.ToUpper(tok[1:])[0]); d {
			case DetailExpanded, DetailBare, DetailDistance, DetailSimplified:
				m.Detail = d
			default:
				return Mode{}, modeError("unknown flag %q (want -E, -B, -D or -S)", tok)
			}
			continue
		}

		if selector != "" {
			return Mode{}, modeError("unexpected token %q", tok)
		}
		selector = strings.ToLower(tok)
	}

	if selector == "" {
		return m, nil
	}

	parts := strings.Split(selector, "~")
	if len(parts) > 2 {
		return Mode{}, modeError("more than one '~' in %q", selector)
	}

	if parts[0] != "" {
		b, ok := lookupBase(parts[0])
		if !ok {
			return Mode{}, modeError("unknown base %q (want knn, knn_d, cos or gauss_w)", parts[0])
		}
		m.Base = b
	}

	if len(parts) == 2 {
		sim, ok := lookupMetric(parts[1])
		if !ok {
			return Mode{}, modeError("unknown similarity %q (want l2, d, cos, gauss, gauss_w or none)", parts[1])
		}
		m.Similarity = sim
	}

	return m, nil
}

func lookupBase(name string) (Base, bool) {
	for b, n := range baseNames {
		if n == name {
			return b, true
		}
	}
	return 0, false
}

func lookupMetric(name string) (Metric, bool) {
	for m, n := range metricNames {
		if n == name {
			return m, true
		}
	}
	return 0, false
}

func modeError(format string, args ...interface{}) error {
	return &vad.InvalidQueryError{Field: "mode", Reason: fmt.Sprintf(format, args...)}
}
