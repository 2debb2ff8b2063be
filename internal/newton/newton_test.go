package newton

import (
	"math"
	"testing"

	"pagedewarp/internal/camera"
	"pagedewarp/pkg/geometry"
)

func TestIntersectFlatSurfaceIdentityPose(t *testing.T) {
	surface := geometry.ZeroPolyCurve(7) // flat page: z = 0 everywhere
	r := camera.RTheta([3]float64{0, 0, 0})

	focal := camera.FocalPoint3D{X: 3, Y: 2, Z: -1000}
	p, err := Intersect(focal, r, surface)
	if err != nil {
		t.Fatalf("Intersect returned error: %v", err)
	}
	if math.Abs(p.Z) > 1e-6 {
		t.Fatalf("intersection point not on flat surface: Z = %v", p.Z)
	}
	// q(t) = R*(t*p - Of) with R=I reduces to t*p - (0,0,f); solving
	// q_z=0 gives t = f/p.Z = -1, so q = (-3,-2,0).
	if math.Abs(p.X+3) > 1e-6 || math.Abs(p.Y+2) > 1e-6 {
		t.Fatalf("Intersect = %v, want (-3,-2,0)", p)
	}
}

func TestIntersectCurvedSurfaceConverges(t *testing.T) {
	// A mild cylindrical bend: g(x) = 0.001*x^2 (degree-7 curve with only
	// the quadratic term populated).
	coeffs := make([]float64, 7)
	coeffs[1] = 0.001
	surface := geometry.NewPolyCurve(coeffs)
	r := camera.RTheta([3]float64{0.05, -0.02, 0})

	focal := camera.FocalPoint3D{X: 120, Y: -40, Z: -3270.5}
	p, err := Intersect(focal, r, surface)
	if err != nil {
		t.Fatalf("Intersect returned error: %v", err)
	}
	// Intersect's output is already q(t) in the GCS frame the surface is
	// expressed in, so the surface equation must hold directly on it, with
	// no further rotation applied.
	if math.Abs(surface.Eval(p.X)-p.Z) > 1e-4 {
		t.Fatalf("solved point does not satisfy surface equation: g(%v)=%v, got z=%v",
			p.X, surface.Eval(p.X), p.Z)
	}
}

func TestIntersectMatchesSpecFormula(t *testing.T) {
	surface := geometry.ZeroPolyCurve(7)
	r := camera.RTheta([3]float64{0.05, -0.02, 0.1})
	focal := camera.FocalPoint3D{X: 120, Y: -40, Z: -3270.5}

	gotT, gotQ, err := IntersectT(focal, r, surface)
	if err != nil {
		t.Fatalf("IntersectT returned error: %v", err)
	}

	// Recompute q(t) = R*(t*p - Of) independently of Intersect's own
	// internals, to check the formula rather than self-consistency with
	// whatever Intersect happens to compute.
	f := -focal.Z
	of := camera.Of(f)
	tp := camera.FocalPoint3D{X: gotT * focal.X, Y: gotT * focal.Y, Z: gotT * focal.Z}
	diff := camera.FocalPoint3D{X: tp.X - of.X, Y: tp.Y - of.Y, Z: tp.Z - of.Z}
	want := r.Apply(diff)

	if math.Abs(gotQ.X-want.X) > 1e-6 || math.Abs(gotQ.Y-want.Y) > 1e-6 || math.Abs(gotQ.Z-want.Z) > 1e-6 {
		t.Fatalf("IntersectT = %v, want %v (q(t) = R*(t*p - Of))", gotQ, want)
	}
}

func TestIntersectAllReturnsOnePointPerRay(t *testing.T) {
	surface := geometry.ZeroPolyCurve(7)
	r := camera.RTheta([3]float64{0, 0, 0})
	focals := []camera.FocalPoint3D{
		{X: 10, Y: 10, Z: -1000},
		{X: -5, Y: 3, Z: -1000},
	}
	pts, err := IntersectAll(focals, r, surface)
	if err != nil {
		t.Fatalf("IntersectAll returned unexpected error: %v", err)
	}
	if len(pts) != len(focals) {
		t.Fatalf("IntersectAll returned %d points, want %d", len(pts), len(focals))
	}
}
