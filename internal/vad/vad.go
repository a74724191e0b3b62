/*
Package vad defines the valence/arousal/dominance value types shared by the
catalogue index and the affective dynamics engine.

All coordinates are expected in [-1, 1]. Points and entries are plain values
and are never mutated once created.
*/
package vad

import "math"

// Point is a single observation of an actor's affect.
type Point struct {
	V float64 `json:"valence" yaml:"valence"`
	A float64 `json:"arousal" yaml:"arousal"`
	D float64 `json:"dominance" yaml:"dominance"`

	// Timestamp is seconds since an arbitrary epoch, used only for rates.
	Timestamp float64 `json:"timestamp" yaml:"timestamp,omitempty"`

	// Owner is the actor identifier the sample belongs to.
	Owner string `json:"owner,omitempty" yaml:"owner,omitempty"`
}

// Vec returns the spatial part of the point.
func (p Point) Vec() Vec3 {
	return Vec3{p.V, p.A, p.D}
}

// Entry is one labeled emotion term of the catalogue.
type Entry struct {
	Term string  `json:"term"`
	V    float64 `json:"valence" yaml:"valence"`
	A    float64 `json:"arousal" yaml:"arousal"`
	D    float64 `json:"dominance" yaml:"dominance"`
}

// Vec returns the entry coordinates.
func (e Entry) Vec() Vec3 {
	return Vec3{e.V, e.A, e.D}
}

// Vec3 is a point or displacement in VAD space.
type Vec3 struct {
	X, Y, Z float64
}

// At returns the coordinate on axis 0 (valence), 1 (arousal) or 2 (dominance).
func (v Vec3) At(axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Dot returns the inner product.
func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Norm returns the Euclidean length.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// Dist2 returns the squared Euclidean distance between v and o.
func (v Vec3) Dist2(o Vec3) float64 {
	d := v.Sub(o)
	return d.Dot(d)
}

// Dist returns the Euclidean distance between v and o.
func (v Vec3) Dist(o Vec3) float64 {
	return math.Sqrt(v.Dist2(o))
}

// InRange reports whether every coordinate is finite and within [-1, 1].
func (v Vec3) InRange() bool {
	for _, c := range []float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || c < -1 || c > 1 {
			return false
		}
	}
	return true
}

// MaxDistance is the diameter of the VAD cube.
var MaxDistance = 2 * math.Sqrt(3)
