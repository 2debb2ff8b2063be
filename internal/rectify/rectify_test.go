package rectify

import (
	"errors"
	"testing"

	"pagedewarp/internal/baseline"
	"pagedewarp/pkg/geometry"
)

func TestPackedParamsPackAndUnpack(t *testing.T) {
	layout := newPackedParams(4, 2)
	theta := [3]float64{1, 2, 3}
	surface := []float64{0.1, 0.2, 0.3, 0.4}
	align := [2]float64{9, 9}
	l := []float64{5, 6}

	v := layout.pack(theta, surface, align, l)
	if len(v) != layout.size() {
		t.Fatalf("pack length = %d, want size() = %d", len(v), layout.size())
	}
	if got := layout.theta(v); got != theta {
		t.Fatalf("theta(v) = %v, want %v", got, theta)
	}
	gotSurface := layout.surfaceCoeffs(v)
	for i, c := range surface {
		if gotSurface[i] != c {
			t.Fatalf("surfaceCoeffs(v)[%d] = %v, want %v", i, gotSurface[i], c)
		}
	}
	if got := layout.align(v); got != align {
		t.Fatalf("align(v) = %v, want %v", got, align)
	}
	if got := layout.lineOffset(v, 0); got != l[0] {
		t.Fatalf("lineOffset(v,0) = %v, want %v", got, l[0])
	}
	if got := layout.lineOffset(v, 1); got != l[1] {
		t.Fatalf("lineOffset(v,1) = %v, want %v", got, l[1])
	}
}

func threeGlyphLine(slope, yShift float64) baseline.TextLine {
	glyphs := make([]baseline.Glyph, 3)
	for i := 0; i < 3; i++ {
		x := float64(i) * 10
		glyphs[i] = baseline.Glyph{Point: geometry.Point2D{X: x, Y: slope*x + yShift}, Width: 4, Height: 8}
	}
	return baseline.TextLine{Glyphs: glyphs, Curve: geometry.NewPolyCurve([]float64{slope, 0, 0, 0, 0})}
}

func TestRectifyPageFailsWithInsufficientLines(t *testing.T) {
	lines := []baseline.TextLine{threeGlyphLine(0.1, 0), threeGlyphLine(-0.1, 50)}
	_, err := RectifyPage(lines, geometry.Point2D{X: 100, Y: 150}, 200, 300, DefaultOptions())
	var ile *InsufficientLinesError
	if !errors.As(err, &ile) {
		t.Fatalf("RectifyPage error = %v, want *InsufficientLinesError", err)
	}
	if ile.Found != 2 || ile.Required != MinUsableLines {
		t.Fatalf("InsufficientLinesError = %+v, want Found=2 Required=%d", ile, MinUsableLines)
	}
}

func TestRectifyPageFailsWithDegenerateVanishingPoint(t *testing.T) {
	// Three baselines sharing the exact same Curve are parallel everywhere,
	// so both their column-edge RANSAC fits and the naive endpoint fallback
	// degenerate to parallel lines with no unique intersection.
	lines := []baseline.TextLine{
		threeGlyphLine(0.2, 0),
		threeGlyphLine(0.2, 50),
		threeGlyphLine(0.2, 100),
	}
	_, err := RectifyPage(lines, geometry.Point2D{X: 100, Y: 150}, 200, 300, DefaultOptions())
	var dve *DegenerateVanishingPointError
	if !errors.As(err, &dve) {
		t.Fatalf("RectifyPage error = %v, want *DegenerateVanishingPointError", err)
	}
}
