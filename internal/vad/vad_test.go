package vad

import (
	"errors"
	"fmt"
	"math"
	"testing"
)

func TestVec3Distance(t *testing.T) {
	a := Vec3{0.8, 0.6, 0.7}
	b := Vec3{0.75, 0.55, 0.65}

	if got := a.Dist2(b); math.Abs(got-0.0075) > 1e-12 {
		t.Errorf("Dist2 = %v, want 0.0075", got)
	}
	if got := a.Dist(b); math.Abs(got-0.0866) > 1e-4 {
		t.Errorf("Dist = %v, want ~0.0866", got)
	}
}

func TestVec3InRange(t *testing.T) {
	tests := []struct {
		name string
		v    Vec3
		want bool
	}{
		{"origin", Vec3{}, true},
		{"corner", Vec3{1, -1, 1}, true},
		{"above", Vec3{1.01, 0, 0}, false},
		{"nan", Vec3{0, math.NaN(), 0}, false},
		{"inf", Vec3{0, 0, math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.InRange(); got != tt.want {
				t.Errorf("InRange() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVec3At(t *testing.T) {
	v := Vec3{1, 2, 3}
	for axis, want := range []float64{1, 2, 3} {
		if got := v.At(axis); got != want {
			t.Errorf("At(%d) = %v, want %v", axis, got, want)
		}
	}
}

func TestErrorsMatchWithAs(t *testing.T) {
	cause := errors.New("no such file")
	err := fmt.Errorf("startup: %w", &DataLoadError{Path: "x.csv", Err: cause})

	var dle *DataLoadError
	if !errors.As(err, &dle) {
		t.Fatal("expected DataLoadError")
	}
	if !errors.Is(err, cause) {
		t.Error("DataLoadError should unwrap to its cause")
	}

	var iqe *InvalidQueryError
	if errors.As(error(&InvalidParameterError{Field: "weight_k"}), &iqe) {
		t.Error("InvalidParameterError must not match InvalidQueryError")
	}
}
