/*
Package ego derives affect metrics from an actor's VAD trajectory.

Compute is a pure function of its input: it reads the current sample, the
previous sample and the retained history, resolves the optional parameter
overrides against the defaults and returns three groups of metrics.

  - Instant: deviation from the baseline and the stress/reward split of the
    current sample.
  - Dynamics: change since the previous sample and how volatile the recent
    window has been.
  - Cumulative: the region the history occupies and the stress/reward
    accumulated across it.
*/
package ego

import "github.com/khanglvm/delta-ego/internal/vad"

// ComputeInput is everything one analysis reads.
type ComputeInput struct {
	Current *vad.Point
	History []vad.Point
	Prev    *vad.Point

	// Optional overrides; nil means defaults.
	EmotionBase *Axis
	Variables   *Variables
	Weights     *Weights
}

// Instant metrics of the current sample.
type Instant struct {
	Deviation   float64 `json:"deviation"`
	Stable      bool    `json:"stable"`
	Stress      float64 `json:"stress"`
	Reward      float64 `json:"reward"`
	Total       float64 `json:"ratio_total"`
	StressRatio float64 `json:"stress_ratio"`
	RewardRatio float64 `json:"reward_ratio"`
}

// Dynamics describe change relative to the previous sample.
type Dynamics struct {
	HasPrev bool `json:"has_prev"`

	// Delta is current minus previous, stamped with the current sample's
	// timestamp and owner.
	Delta vad.Point `json:"delta"`

	// Velocity is Delta per unit of time.
	Velocity vad.Point `json:"velocity"`

	AffectiveLability float64 `json:"affective_lability"`
	Tilt              float64 `json:"tilt"`
}

// Area is the sphere summarizing where the history sits.
type Area struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Z         float64 `json:"z"`
	Radius    float64 `json:"radius"`
	MaxRadius float64 `json:"max_radius"`
}

// Cumulative metrics over the whole history.
type Cumulative struct {
	Samples        int     `json:"samples"`
	AverageArea    Area    `json:"average_area"`
	Stress         float64 `json:"stress"`
	Reward         float64 `json:"reward"`
	Total          float64 `json:"total"`
	StressRatio    float64 `json:"stress_ratio"`
	RewardRatio    float64 `json:"reward_ratio"`
	StressIntegral float64 `json:"stress_integral"`
	RewardIntegral float64 `json:"reward_integral"`
}

// AnalysisResult is the outcome of Compute.
type AnalysisResult struct {
	Current    vad.Point  `json:"current"`
	Instant    Instant    `json:"instant"`
	Dynamics   Dynamics   `json:"dynamics"`
	Cumulative Cumulative `json:"cumulative"`
}
