package ego

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/khanglvm/delta-ego/internal/vad"
)

const (
	// ratioEpsilon is the smallest stress+reward total that yields ratios.
	ratioEpsilon = 1e-9

	// fallbackStep replaces non-positive time steps when integrating.
	fallbackStep = 0.1
)

// Compute analyzes in. It fails with *vad.AnalysisPreconditionError when
// there is no current sample or no history, and with
// *vad.InvalidParameterError when an override is malformed.
func Compute(in ComputeInput) (*AnalysisResult, error) {
	if in.Current == nil {
		return nil, &vad.AnalysisPreconditionError{Reason: "no current sample"}
	}
	if len(in.History) == 0 {
		return nil, &vad.AnalysisPreconditionError{Reason: "history is empty"}
	}
	if err := checkPoint("current", *in.Current); err != nil {
		return nil, err
	}
	if in.Prev != nil {
		if err := checkPoint("prev", *in.Prev); err != nil {
			return nil, err
		}
	}
	for _, h := range in.History {
		if err := checkPoint("history", h); err != nil {
			return nil, err
		}
	}

	p, err := Resolve(in.Weights, in.Variables, in.EmotionBase)
	if err != nil {
		return nil, err
	}

	return &AnalysisResult{
		Current:    *in.Current,
		Instant:    p.instant(in.Current.Vec()),
		Dynamics:   p.dynamics(*in.Current, in.Prev, in.History),
		Cumulative: p.cumulative(in.History),
	}, nil
}

func checkPoint(field string, pt vad.Point) error {
	for _, c := range []float64{pt.V, pt.A, pt.D, pt.Timestamp} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return &vad.InvalidParameterError{Field: field, Reason: "coordinates must be finite"}
		}
	}
	return nil
}

// Stress returns the stress of x relative to the baseline. Inside the
// stability radius it is scaled by the dampening factor.
func (p Params) Stress(x vad.Vec3) float64 {
	d := x.Sub(p.Baseline)
	s := clamp01(p.ValenceStress*(1-d.X)/2 + p.ArousalStress*d.Y)
	if x.Dist(p.Baseline) <= p.StabilityRadius {
		s *= p.Dampening
	}
	return s
}

// Reward returns the reward of x relative to the baseline.
func (p Params) Reward(x vad.Vec3) float64 {
	d := x.Sub(p.Baseline)
	return clamp01(p.ValenceReward*(1+d.X)/2 + p.ArousalReward*d.Y)
}

func (p Params) instant(x vad.Vec3) Instant {
	deviation := x.Dist(p.Baseline)
	stress, reward := p.Stress(x), p.Reward(x)
	total, sr, rr := ratios(stress, reward)

	return Instant{
		Deviation:   deviation,
		Stable:      deviation <= p.StabilityRadius,
		Stress:      stress,
		Reward:      reward,
		Total:       total,
		StressRatio: sr,
		RewardRatio: rr,
	}
}

func ratios(stress, reward float64) (total, stressRatio, rewardRatio float64) {
	total = stress + reward
	if total <= ratioEpsilon {
		return total, 0, 0
	}
	return total, stress / total, reward / total
}

func (p Params) dynamics(cur vad.Point, prev *vad.Point, history []vad.Point) Dynamics {
	if prev == nil {
		return Dynamics{
			Delta:    vad.Point{Timestamp: cur.Timestamp, Owner: cur.Owner},
			Velocity: vad.Point{Timestamp: cur.Timestamp, Owner: cur.Owner},
		}
	}

	delta := cur.Vec().Sub(prev.Vec())
	dt := cur.Timestamp - prev.Timestamp
	if dt <= 0 {
		dt = 1
	}
	velocity := delta.Scale(1 / dt)

	angle := math.Atan2(delta.Z, math.Hypot(delta.X, delta.Y))

	return Dynamics{
		HasPrev:           true,
		Delta:             vad.Point{V: delta.X, A: delta.Y, D: delta.Z, Timestamp: cur.Timestamp, Owner: cur.Owner},
		Velocity:          vad.Point{V: velocity.X, A: velocity.Y, D: velocity.Z, Timestamp: cur.Timestamp, Owner: cur.Owner},
		AffectiveLability: p.lability(cur, *prev, history),
		Tilt:              sigmoid(p.K * (angle - p.Theta0)),
	}
}

// lability is the root mean square of successive step lengths over the
// last LabilityWindow samples of the trajectory ending at cur.
func (p Params) lability(cur, prev vad.Point, history []vad.Point) float64 {
	trajectory := history
	if n := len(history); n == 0 || history[n-1] != cur {
		trajectory = append(history[:n:n], cur)
	}
	if len(trajectory) > p.LabilityWindow {
		trajectory = trajectory[len(trajectory)-p.LabilityWindow:]
	}
	if len(trajectory) < 2 {
		trajectory = []vad.Point{prev, cur}
	}

	steps := make([]float64, len(trajectory)-1)
	for i := 1; i < len(trajectory); i++ {
		steps[i-1] = trajectory[i].Vec().Dist2(trajectory[i-1].Vec())
	}
	return math.Sqrt(stat.Mean(steps, nil))
}

func (p Params) cumulative(history []vad.Point) Cumulative {
	n := len(history)
	xs, ys, zs := make([]float64, n), make([]float64, n), make([]float64, n)
	for i, h := range history {
		xs[i], ys[i], zs[i] = h.V, h.A, h.D
	}
	centroid := vad.Vec3{X: stat.Mean(xs, nil), Y: stat.Mean(ys, nil), Z: stat.Mean(zs, nil)}
	if sameLocation(history) {
		centroid = history[0].Vec()
	}

	sq := make([]float64, n)
	dist := make([]float64, n)
	for i, h := range history {
		sq[i] = h.Vec().Dist2(centroid)
		dist[i] = math.Sqrt(sq[i])
	}

	c := Cumulative{
		Samples: n,
		AverageArea: Area{
			X:         centroid.X,
			Y:         centroid.Y,
			Z:         centroid.Z,
			Radius:    math.Sqrt(stat.Mean(sq, nil)),
			MaxRadius: floats.Max(dist),
		},
	}

	for i, h := range history {
		x := h.Vec()
		s, r := p.Stress(x), p.Reward(x)
		c.Stress += s
		c.Reward += r

		if i == 0 {
			continue
		}
		dt := h.Timestamp - history[i-1].Timestamp
		if dt <= 0 {
			dt = fallbackStep
		}
		c.StressIntegral += s * dt
		c.RewardIntegral += r * dt
	}
	c.Total, c.StressRatio, c.RewardRatio = ratios(c.Stress, c.Reward)

	return c
}

// sameLocation reports whether every sample has the same coordinates, so the
// centroid can be taken exactly instead of through a rounded mean.
func sameLocation(history []vad.Point) bool {
	first := history[0].Vec()
	for _, h := range history[1:] {
		if h.Vec() != first {
			return false
		}
	}
	return true
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func clamp01(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	}
	return x
}
