package search

import (
	"math"

	"github.com/khanglvm/delta-ego/internal/vad"
)

// similarityInput carries what the metrics need beyond the two points.
type similarityInput struct {
	radius float64
	sigma  float64
	scale  vad.Vec3
}

// similarity maps a hit to [0, 1] under metric m.
func similarity(m Metric, q, p vad.Vec3, d2 float64, in similarityInput) float64 {
	switch m {
	case MetricRelative:
		r2 := in.radius * in.radius
		if in.radius <= 0 || d2 >= r2 {
			return 0
		}
		return 1 - d2/r2

	case MetricCosine:
		return (cosineSimilarity(q, p) + 1) / 2

	case MetricGauss:
		return gaussKernel(d2, in.sigma)

	case MetricGaussWhitened:
		delta := q.Sub(p)
		w := vad.Vec3{X: delta.X / in.scale.X, Y: delta.Y / in.scale.Y, Z: delta.Z / in.scale.Z}
		return gaussKernel(w.Dot(w), in.sigma)

	default:
		return clamp01(1 - math.Sqrt(d2)/vad.MaxDistance)
	}
}

// cosineSimilarity returns 0 when either vector has zero length.
func cosineSimilarity(a, b vad.Vec3) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	return a.Dot(b) / (na * nb)
}

func gaussKernel(d2, sigma float64) float64 {
	if sigma <= 0 {
		return 0
	}
	return clamp01(math.Exp(-d2 / (2 * sigma * sigma)))
}

func clamp01(x float64) float64 {
	switch {
	case x < 0 || math.IsNaN(x):
		return 0
	case x > 1:
		return 1
	}
	return x
}

// Percent converts a [0, 1] similarity to a rounded percentage.
func Percent(sim float64) int {
	return int(math.Round(clamp01(sim) * 100))
}

// Expression names the intensity bucket of a percentage.
func Expression(percent int) string {
	switch {
	case percent <= 5:
		return "negligible"
	case percent <= 20:
		return "mild"
	case percent <= 40:
		return "somewhat"
	case percent <= 60:
		return "moderate"
	case percent <= 80:
		return "quite"
	case percent <= 95:
		return "intense"
	default:
		return "absolute"
	}
}
