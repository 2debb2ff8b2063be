package vanish

import (
	"math"
	"testing"

	"pagedewarp/internal/baseline"
	"pagedewarp/pkg/geometry"
)

// lineWithSlope builds a TextLine whose Curve is a pure a[0]*X term, i.e. a
// straight line with the given slope through the origin (PolyCurve's
// constant term is always pinned to 0), with two glyphs bracketing x=0.
func lineWithSlope(slope float64) baseline.TextLine {
	return baseline.TextLine{
		Glyphs: []baseline.Glyph{
			{Point: geometry.Point2D{X: -10, Y: -slope * 10}, Height: 10},
			{Point: geometry.Point2D{X: 10, Y: slope * 10}, Height: 10},
		},
		Curve: geometry.NewPolyCurve([]float64{slope, 0, 0, 0, 0}),
	}
}

func TestEstimateAHReturnsMedianGlyphHeight(t *testing.T) {
	lines := []baseline.TextLine{
		{Glyphs: []baseline.Glyph{{Height: 10}, {Height: 20}, {Height: 30}}},
	}
	got := EstimateAH(lines)
	if got != 20 {
		t.Fatalf("EstimateAH = %v, want 20", got)
	}
}

func TestEstimateAHDefaultsOnNoGlyphs(t *testing.T) {
	got := EstimateAH(nil)
	if got != 1 {
		t.Fatalf("EstimateAH with no glyphs = %v, want 1", got)
	}
}

// columnLine builds a TextLine with exactly two glyphs at explicit
// left/right edge positions (zero width, so left/right bound == Point.X),
// for exercising EstimateInitial's column-edge RANSAC fit.
func columnLine(leftX, rightX, y float64) baseline.TextLine {
	return baseline.TextLine{
		Glyphs: []baseline.Glyph{
			{Point: geometry.Point2D{X: leftX, Y: y}, Width: 0, Height: 20},
			{Point: geometry.Point2D{X: rightX, Y: y}, Width: 0, Height: 20},
		},
	}
}

func TestEstimateInitialIntersectsColumnEdges(t *testing.T) {
	// Left edge: constant x=100 (m=0,b=100). Right edge: x=0.5*y+300.
	// These intersect at y=(100-300)/0.5=-400, x=100.
	lines := []baseline.TextLine{
		columnLine(100, 300, 0),
		columnLine(100, 325, 50),
		columnLine(100, 350, 100),
	}
	vp, ok := EstimateInitial(lines, 1000, 0)
	if !ok {
		t.Fatal("EstimateInitial failed")
	}
	if math.Abs(vp.X-100) > 1e-3 || math.Abs(vp.Y+400) > 1e-3 {
		t.Fatalf("EstimateInitial = %v, want (100,-400)", vp)
	}
}

func TestEstimateInitialFallsBackWithNoLines(t *testing.T) {
	_, ok := EstimateInitial(nil, 10, 0)
	if ok {
		t.Fatal("EstimateInitial should fail with no lines")
	}
}

func TestNaiveVanishingPointIntersectsTopAndBottom(t *testing.T) {
	top := baseline.TextLine{Glyphs: []baseline.Glyph{
		{Point: geometry.Point2D{X: 0, Y: 0}},
		{Point: geometry.Point2D{X: 100, Y: 0}},
	}}
	bottom := baseline.TextLine{Glyphs: []baseline.Glyph{
		{Point: geometry.Point2D{X: 0, Y: 100}},
		{Point: geometry.Point2D{X: 100, Y: 200}},
	}}
	vp, ok := naiveVanishingPoint([]baseline.TextLine{top, bottom})
	if !ok {
		t.Fatal("naiveVanishingPoint failed")
	}
	if math.Abs(vp.X+100) > 1e-6 || math.Abs(vp.Y) > 1e-6 {
		t.Fatalf("naiveVanishingPoint = %v, want (-100,0)", vp)
	}
}

func TestNaiveVanishingPointFailsWithTooFewLines(t *testing.T) {
	_, ok := naiveVanishingPoint(nil)
	if ok {
		t.Fatal("naiveVanishingPoint should fail with no lines")
	}
}

func TestRefineLeavesAlreadyConvergedLinesUnchanged(t *testing.T) {
	lines := []baseline.TextLine{lineWithSlope(0.2), lineWithSlope(-0.1), lineWithSlope(0.05)}
	vp := Refine(lines, geometry.Point2D{}, geometry.Point2D{}, 3270.5, NumLongitudes, 1)
	if math.Abs(vp.X) > 1e-6 || math.Abs(vp.Y) > 1e-6 {
		t.Fatalf("Refine = %v, want origin unchanged", vp)
	}
}

func TestRefineReturnsSeedWhenNoLinesUsable(t *testing.T) {
	seed := geometry.Point2D{X: 3, Y: 4}
	got := Refine(nil, seed, geometry.Point2D{}, 3270.5, NumLongitudes, RefineIterations)
	if got != seed {
		t.Fatalf("Refine with no lines = %v, want unchanged seed %v", got, seed)
	}
}

func TestAspectRatioDefaultsOnDegenerateSpan(t *testing.T) {
	got := AspectRatio(geometry.Point2D{X: 0, Y: -1000}, geometry.Point2D{}, 3270.5, 10, 10, 0, 100)
	if got != DefaultAspectRatio {
		t.Fatalf("AspectRatio = %v, want DefaultAspectRatio", got)
	}
}

func TestAspectRatioDefaultsWhenVanishingPointAtPrincipalY(t *testing.T) {
	got := AspectRatio(geometry.Point2D{X: 500, Y: 0}, geometry.Point2D{}, 3270.5, 0, 1000, 0, 500)
	if got != DefaultAspectRatio {
		t.Fatalf("AspectRatio = %v, want DefaultAspectRatio", got)
	}
}

func TestAspectRatioComputesForeshorteningCorrection(t *testing.T) {
	vp := geometry.Point2D{X: 500, Y: -1000}
	o := geometry.Point2D{}
	got := AspectRatio(vp, o, 1000, 0, 1000, 0, 500)
	want := 1000 * math.Cos(math.Atan(1000.0/-1000.0)) / 500
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("AspectRatio = %v, want %v", got, want)
	}
}
