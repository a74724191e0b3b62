package ego

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/khanglvm/delta-ego/internal/vad"
)

// Default weights.
const (
	DefaultValenceStress = 0.3
	DefaultArousalStress = 0.7
	DefaultValenceReward = 0.5
	DefaultArousalReward = 0.5
	DefaultWeightK       = 0.5
)

// Default variables and axis.
const (
	DefaultTheta0          = 0.0
	DefaultDampening       = 0.08
	DefaultLabilityWindow  = 8
	DefaultStabilityRadius = 0.3

	maxWeightK        = 10
	maxLabilityWindow = 1024
)

// Weights are optional overrides of the stress/reward projection weights.
// A nil field takes its default.
type Weights struct {
	ValenceStress *float64 `json:"weightV_stress,omitempty" yaml:"weightV_stress,omitempty"`
	ArousalStress *float64 `json:"weightA_stress,omitempty" yaml:"weightA_stress,omitempty"`
	ValenceReward *float64 `json:"weightV_reward,omitempty" yaml:"weightV_reward,omitempty"`
	ArousalReward *float64 `json:"weightA_reward,omitempty" yaml:"weightA_reward,omitempty"`
	K             *float64 `json:"weight_k,omitempty" yaml:"weight_k,omitempty"`
}

// Variables are optional overrides of the model variables.
type Variables struct {
	Theta0          *float64 `json:"theta_0,omitempty" yaml:"theta_0,omitempty"`
	DampeningFactor *float64 `json:"dampening_factor,omitempty" yaml:"dampening_factor,omitempty"`
	LabilityWindow  *int     `json:"lability_window,omitempty" yaml:"lability_window,omitempty"`
}

// Axis is the actor's emotional reference: a baseline point and the radius
// inside which deviation counts as stable. A nil baseline is the origin and
// a nil radius takes DefaultStabilityRadius.
type Axis struct {
	Baseline        *vad.Point `json:"baseline,omitempty" yaml:"baseline,omitempty"`
	StabilityRadius *float64   `json:"stabilityRadius,omitempty" yaml:"stabilityRadius,omitempty"`
}

// DefaultAxis is the neutral origin with the default stability radius.
func DefaultAxis() Axis {
	radius := DefaultStabilityRadius
	return Axis{Baseline: &vad.Point{}, StabilityRadius: &radius}
}

// Merge returns a with every field set in over replacing it.
func (a *Axis) Merge(over *Axis) *Axis {
	out := &Axis{}
	if a != nil {
		*out = *a
	}
	if over == nil {
		return out
	}
	if over.Baseline != nil {
		out.Baseline = over.Baseline
	}
	if over.StabilityRadius != nil {
		out.StabilityRadius = over.StabilityRadius
	}
	return out
}

// Merge returns w with every field set in over replacing it.
func (w *Weights) Merge(over *Weights) *Weights {
	out := &Weights{}
	if w != nil {
		*out = *w
	}
	if over == nil {
		return out
	}
	for _, f := range []struct{ dst, src **float64 }{
		{&out.ValenceStress, &over.ValenceStress},
		{&out.ArousalStress, &over.ArousalStress},
		{&out.ValenceReward, &over.ValenceReward},
		{&out.ArousalReward, &over.ArousalReward},
		{&out.K, &over.K},
	} {
		if *f.src != nil {
			*f.dst = *f.src
		}
	}
	return out
}

// Merge returns v with every field set in over replacing it.
func (v *Variables) Merge(over *Variables) *Variables {
	out := &Variables{}
	if v != nil {
		*out = *v
	}
	if over == nil {
		return out
	}
	if over.Theta0 != nil {
		out.Theta0 = over.Theta0
	}
	if over.DampeningFactor != nil {
		out.DampeningFactor = over.DampeningFactor
	}
	if over.LabilityWindow != nil {
		out.LabilityWindow = over.LabilityWindow
	}
	return out
}

// Params is the fully resolved parameter set used by Compute.
type Params struct {
	ValenceStress float64
	ArousalStress float64
	ValenceReward float64
	ArousalReward float64
	K             float64

	Theta0         float64
	Dampening      float64
	LabilityWindow int

	Baseline        vad.Vec3
	StabilityRadius float64
}

// DefaultParams returns the parameters used when nothing is overridden.
func DefaultParams() Params {
	return Params{
		ValenceStress:   DefaultValenceStress,
		ArousalStress:   DefaultArousalStress,
		ValenceReward:   DefaultValenceReward,
		ArousalReward:   DefaultArousalReward,
		K:               DefaultWeightK,
		Theta0:          DefaultTheta0,
		Dampening:       DefaultDampening,
		LabilityWindow:  DefaultLabilityWindow,
		StabilityRadius: DefaultStabilityRadius,
	}
}

// Resolve fills omitted fields with defaults. A present field that is not
// finite or lies outside its range returns a *vad.InvalidParameterError.
func Resolve(w *Weights, v *Variables, axis *Axis) (Params, error) {
	p := DefaultParams()

	if w != nil {
		checks := []struct {
			name    string
			src     *float64
			dst     *float64
			lo, hi  float64
			openLow bool
		}{
			{"weightV_stress", w.ValenceStress, &p.ValenceStress, 0, 1, false},
			{"weightA_stress", w.ArousalStress, &p.ArousalStress, 0, 1, false},
			{"weightV_reward", w.ValenceReward, &p.ValenceReward, 0, 1, false},
			{"weightA_reward", w.ArousalReward, &p.ArousalReward, 0, 1, false},
			{"weight_k", w.K, &p.K, 0, maxWeightK, true},
		}
		for _, c := range checks {
			if c.src == nil {
				continue
			}
			if err := checkRange(c.name, *c.src, c.lo, c.hi, c.openLow); err != nil {
				return Params{}, err
			}
			*c.dst = *c.src
		}
	}

	if v != nil {
		if v.Theta0 != nil {
			if err := checkRange("theta_0", *v.Theta0, -math.Pi/2, math.Pi/2, false); err != nil {
				return Params{}, err
			}
			p.Theta0 = *v.Theta0
		}
		if v.DampeningFactor != nil {
			if err := checkRange("dampening_factor", *v.DampeningFactor, 0, 1, false); err != nil {
				return Params{}, err
			}
			p.Dampening = *v.DampeningFactor
		}
		if v.LabilityWindow != nil {
			n := *v.LabilityWindow
			if n < 2 || n > maxLabilityWindow {
				return Params{}, &vad.InvalidParameterError{
					Field:  "lability_window",
					Reason: fmt.Sprintf("%d outside [2, %d]", n, maxLabilityWindow),
				}
			}
			p.LabilityWindow = n
		}
	}

	if axis != nil {
		if axis.Baseline != nil {
			base := axis.Baseline.Vec()
			if !base.InRange() {
				return Params{}, &vad.InvalidParameterError{Field: "baseline", Reason: "coordinates must lie in [-1, 1]"}
			}
			p.Baseline = base
		}
		if axis.StabilityRadius != nil {
			if err := checkRange("stabilityRadius", *axis.StabilityRadius, 0, vad.MaxDistance, false); err != nil {
				return Params{}, err
			}
			p.StabilityRadius = *axis.StabilityRadius
		}
	}

	return p, nil
}

func checkRange(name string, x, lo, hi float64, openLow bool) error {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return &vad.InvalidParameterError{Field: name, Reason: "must be a finite number"}
	}
	if x > hi || x < lo || (openLow && x == lo) {
		open := "["
		if openLow {
			open = "("
		}
		return &vad.InvalidParameterError{Field: name, Reason: fmt.Sprintf("%g outside %s%g, %g]", x, open, lo, hi)}
	}
	return nil
}

// ParseWeights decodes a JSON weights override. Empty input yields nil.
func ParseWeights(data []byte) (*Weights, error) {
	var w Weights
	ok, err := decodeStrict("weights", data, &w)
	if !ok {
		return nil, err
	}
	return &w, nil
}

// ParseVariables decodes a JSON variables override. Empty input yields nil.
func ParseVariables(data []byte) (*Variables, error) {
	var v Variables
	ok, err := decodeStrict("variables", data, &v)
	if !ok {
		return nil, err
	}
	return &v, nil
}

// ParseAxis decodes a JSON axis override. Empty input yields nil.
func ParseAxis(data []byte) (*Axis, error) {
	var a Axis
	ok, err := decodeStrict("axis", data, &a)
	if !ok {
		return nil, err
	}
	return &a, nil
}

// decodeStrict rejects unknown fields and wrong types as parameter errors.
// It reports false when data is empty or invalid.
func decodeStrict(what string, data []byte, dst interface{}) (bool, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return false, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return false, &vad.InvalidParameterError{
				Field:  typeErr.Field,
				Reason: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
			}
		}
		return false, &vad.InvalidParameterError{Field: what, Reason: err.Error()}
	}
	return true, nil
}
