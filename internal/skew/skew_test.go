package skew

import (
	"math"
	"testing"

	"pagedewarp/pkg/geometry"
)

func TestEstimateAngleMedianSlope(t *testing.T) {
	slopes := []float64{0.1, 0.12, 0.09, 5.0, -5.0} // two wild outliers
	got := EstimateAngle(slopes)
	want := math.Atan(0.1) // median of the sorted slice
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("EstimateAngle = %v, want %v", got, want)
	}
}

func TestEstimateAngleEmptyIsZero(t *testing.T) {
	if got := EstimateAngle(nil); got != 0 {
		t.Fatalf("EstimateAngle(nil) = %v, want 0", got)
	}
}

func TestEstimateAngleDoesNotMutateInput(t *testing.T) {
	slopes := []float64{3, 1, 2}
	_ = EstimateAngle(slopes)
	if slopes[0] != 3 || slopes[1] != 1 || slopes[2] != 2 {
		t.Fatalf("EstimateAngle mutated its input: %v", slopes)
	}
}

func TestCorrectionTransformLeavesCenterFixed(t *testing.T) {
	w, h := 100, 200
	tr := CorrectionTransform(math.Pi/2, w, h)
	center := geometry.Point2D{X: 50, Y: 100}
	got := tr.Apply(center)
	if math.Abs(got.X-center.X) > 1e-9 || math.Abs(got.Y-center.Y) > 1e-9 {
		t.Fatalf("CorrectionTransform moved the rotation center: %v -> %v", center, got)
	}
}

func TestCorrectionTransformAppliesNegativeAngle(t *testing.T) {
	w, h := 100, 200
	tr := CorrectionTransform(math.Pi/2, w, h)
	center := geometry.Point2D{X: 50, Y: 100}
	p := geometry.Point2D{X: center.X + 10, Y: center.Y}
	got := tr.Apply(p)
	// Rotating by -angle (undoing a +90deg skew) takes a point to the right
	// of center and moves it to directly above center.
	want := geometry.Point2D{X: center.X, Y: center.Y - 10}
	if math.Abs(got.X-want.X) > 1e-9 || math.Abs(got.Y-want.Y) > 1e-9 {
		t.Fatalf("CorrectionTransform.Apply(%v) = %v, want %v", p, got, want)
	}
}
