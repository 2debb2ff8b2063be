package geometry

import (
	"math"
	"testing"
)

func TestAffineIdentity(t *testing.T) {
	p := Point2D{X: 3, Y: 4}
	got := Identity().Apply(p)
	if got != p {
		t.Fatalf("Identity().Apply(%v) = %v, want %v", p, got, p)
	}
}

func TestRotationRoundTrip(t *testing.T) {
	p := Point2D{X: 5, Y: 0}
	r := Rotation(math.Pi / 2)
	got := r.Apply(p)
	want := Point2D{X: 0, Y: 5}
	if math.Abs(got.X-want.X) > 1e-9 || math.Abs(got.Y-want.Y) > 1e-9 {
		t.Fatalf("Rotation(pi/2).Apply(%v) = %v, want %v", p, got, want)
	}
}

func TestBoxIntersectUnion(t *testing.T) {
	a := Box{X0: 0, Y0: 0, X1: 10, Y1: 10}
	b := Box{X0: 5, Y0: 5, X1: 15, Y1: 15}

	inter := a.Intersect(b)
	if !inter.Nonempty() || inter.X0 != 5 || inter.Y1 != 10 {
		t.Fatalf("Intersect got %+v", inter)
	}

	union := a.Union(b)
	if union.X0 != 0 || union.Y1 != 15 {
		t.Fatalf("Union got %+v", union)
	}
}

func TestBoxNullAccumulates(t *testing.T) {
	null := NullBox(100, 100)
	if null.Nonempty() {
		t.Fatalf("NullBox should start empty, got %+v", null)
	}
	merged := null.Union(Box{X0: 1, Y0: 1, X1: 2, Y1: 2})
	if merged.X0 != 1 || merged.X1 != 2 {
		t.Fatalf("Union with null box should yield the other box, got %+v", merged)
	}
}

func TestLineFromSlopeIntercept(t *testing.T) {
	l := LineFromSlopeIntercept(2, 1)
	y, ok := l.YAt(3)
	if !ok || math.Abs(y-7) > 1e-9 {
		t.Fatalf("YAt(3) = %v, %v, want 7, true", y, ok)
	}
}

func TestLineIntersect(t *testing.T) {
	a := LineFromSlopeIntercept(1, 0)
	b := LineFromSlopeIntercept(-1, 4)
	p, ok := a.Intersect(b)
	if !ok || math.Abs(p.X-2) > 1e-9 || math.Abs(p.Y-2) > 1e-9 {
		t.Fatalf("Intersect = %v, %v, want (2,2), true", p, ok)
	}
}

func TestFitLineHorizontal(t *testing.T) {
	pts := []Point2D{{X: 0, Y: 5}, {X: 1, Y: 5}, {X: 2, Y: 5}, {X: 3, Y: 5}}
	l, ok := FitLine(pts)
	if !ok {
		t.Fatal("FitLine failed")
	}
	for _, p := range pts {
		if l.Distance(p) > 1e-6 {
			t.Fatalf("point %v not on fitted line (distance %v)", p, l.Distance(p))
		}
	}
}

func TestFitLineVertical(t *testing.T) {
	pts := []Point2D{{X: 3, Y: 0}, {X: 3, Y: 1}, {X: 3, Y: 2}, {X: 3, Y: 3}}
	l, ok := FitLine(pts)
	if !ok {
		t.Fatal("FitLine failed")
	}
	for _, p := range pts {
		if l.Distance(p) > 1e-6 {
			t.Fatalf("vertical point %v not on fitted line (distance %v)", p, l.Distance(p))
		}
	}
}

func TestBestIntersectionConcurrentLines(t *testing.T) {
	vp := Point2D{X: 10, Y: 20}
	lines := []Line2D{
		LineFromPoints(vp, Point2D{X: 0, Y: 0}),
		LineFromPoints(vp, Point2D{X: 0, Y: 5}),
		LineFromPoints(vp, Point2D{X: 0, Y: -5}),
	}
	got, ok := BestIntersection(lines)
	if !ok {
		t.Fatal("BestIntersection failed")
	}
	if math.Abs(got.X-vp.X) > 1e-6 || math.Abs(got.Y-vp.Y) > 1e-6 {
		t.Fatalf("BestIntersection = %v, want %v", got, vp)
	}
}

func TestPolyCurveEvalAndDeriv(t *testing.T) {
	// g(x) = 2x + 3x^2
	g := NewPolyCurve([]float64{2, 3})
	if math.Abs(g.Eval(2)-(2*2+3*4)) > 1e-9 {
		t.Fatalf("Eval(2) = %v, want %v", g.Eval(2), 2*2+3*4)
	}
	// g'(x) = 2 + 6x
	if math.Abs(g.Deriv(2)-(2+6*2)) > 1e-9 {
		t.Fatalf("Deriv(2) = %v, want %v", g.Deriv(2), 2+6*2)
	}
}

func TestPolyCurveConstantPinnedToZero(t *testing.T) {
	g := ZeroPolyCurve(5)
	if g.Eval(0) != 0 {
		t.Fatalf("Eval(0) = %v, want 0", g.Eval(0))
	}
}

func TestArcLengthResamplePreservesEndpoints(t *testing.T) {
	xs := []float64{0, 1, 2, 3, 4}
	ys := []float64{0, 0, 0, 0, 0}
	rxs, rys, total := ArcLengthResample(xs, ys, 9)
	if math.Abs(total-4) > 1e-9 {
		t.Fatalf("total arc length = %v, want 4", total)
	}
	if math.Abs(rxs[0]-0) > 1e-9 || math.Abs(rxs[len(rxs)-1]-4) > 1e-9 {
		t.Fatalf("resample did not preserve endpoints: %v", rxs)
	}
	_ = rys
}

func TestArcLengthResampleMonotonic(t *testing.T) {
	xs := []float64{0, 2, 5, 10}
	ys := []float64{0, 0, 0, 0}
	rxs, _, _ := ArcLengthResample(xs, ys, 20)
	for i := 1; i < len(rxs); i++ {
		if rxs[i] < rxs[i-1] {
			t.Fatalf("resampled X not monotonic at %d: %v -> %v", i, rxs[i-1], rxs[i])
		}
	}
}
