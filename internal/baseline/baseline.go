// Package baseline detects and fits the text baselines (rows of glyphs) that
// anchor the joint optimizer (spec §4.4: Glyph clustering and baseline
// fitting). It is grounded on the original's peak_points/merge_lines/
// remove_outliers pipeline (dewarp.py) and on the teacher's RANSAC-loop
// idiom (internal/alignment/transform.go ComputeAffineRANSAC), generalized
// through the internal/ransac capability pair.
package baseline

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"pagedewarp/internal/ransac"
	"pagedewarp/pkg/geometry"
)

// Glyph is a single connected-component letter/word fragment recovered from
// the binarized page, reduced to its representative point and bounding-box
// width and height (spec §3: Glyph{Point, Width, Height}).
type Glyph struct {
	Point geometry.Point2D
	Width float64
	Height float64
}

// TextLine is a left-to-right ordered run of glyphs believed to lie on one
// baseline, plus the polynomial fitted through them.
type TextLine struct {
	Glyphs []Glyph
	Curve  geometry.PolyCurve
}

// Points returns the line's glyph centers, ordered by X.
func (t TextLine) Points() []geometry.Point2D {
	pts := make([]geometry.Point2D, len(t.Glyphs))
	for i, g := range t.Glyphs {
		pts[i] = g.Point
	}
	return pts
}

// Degree is the baseline polynomial degree used by PolyModel5 (spec §4.4:
// "degree-5 polynomial baseline fitting").
const Degree = 5

// PolyModel5 fits a degree-5 polynomial (constant term pinned to 0) through
// points, and scores residuals as absolute vertical distance. It implements
// ransac.Model[geometry.Point2D, geometry.PolyCurve].
type PolyModel5 struct{}

// MinSamplesPolyModel5 is the minimal sample RANSAC draws per trial.
const MinSamplesPolyModel5 = Degree + 1

func (PolyModel5) Estimate(points []geometry.Point2D) (geometry.PolyCurve, bool) {
	return fitPoly(points, Degree)
}

func (PolyModel5) Residuals(fitted geometry.PolyCurve, points []geometry.Point2D) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = absf(p.Y - fitted.Eval(p.X))
	}
	return out
}

// fitPoly fits y = a1*x + a2*x^2 + ... + a_d*x^d by ordinary least squares
// (Vandermonde columns x^1..x^d), leaving the constant term pinned at 0 as
// the original's PolyModel5 does.
func fitPoly(points []geometry.Point2D, degree int) (geometry.PolyCurve, bool) {
	n := len(points)
	if n < degree {
		return geometry.PolyCurve{}, false
	}
	a := mat.NewDense(n, degree, nil)
	b := mat.NewVecDense(n, nil)
	for i, p := range points {
		pow := p.X
		for k := 0; k < degree; k++ {
			a.Set(i, k, pow)
			pow *= p.X
		}
		b.SetVec(i, p.Y)
	}
	var qr mat.QR
	qr.Factorize(a)
	var x mat.VecDense
	if err := qr.SolveVecTo(&x, false, b); err != nil {
		return geometry.PolyCurve{}, false
	}
	coeffs := make([]float64, degree)
	for k := 0; k < degree; k++ {
		coeffs[k] = x.AtVec(k)
	}
	return geometry.NewPolyCurve(coeffs), true
}

// LinearXModel fits x = m*y + b, used for the near-vertical left/right
// text-column edges rather than baselines (spec §4.4: "LinearXModel: x as a
// function of y for column edges").
type LinearXModel struct{}

// MinSamplesLinearXModel is the minimal sample size (two points determine a
// line).
const MinSamplesLinearXModel = 2

func (LinearXModel) Estimate(points []geometry.Point2D) (geometry.Line2D, bool) {
	if len(points) < 2 {
		return geometry.Line2D{}, false
	}
	return geometry.FitLine(points)
}

func (LinearXModel) Residuals(fitted geometry.Line2D, points []geometry.Point2D) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = fitted.Distance(p)
	}
	return out
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// FitBaseline runs RANSAC PolyModel5 fitting over a candidate glyph
// cluster, returning the TextLine formed from the inlier glyphs (spec
// §4.4: fitted baseline + its supporting glyphs).
func FitBaseline(glyphs []Glyph, opts ransac.Options) (TextLine, bool) {
	pts := make([]geometry.Point2D, len(glyphs))
	for i, g := range glyphs {
		pts[i] = g.Point
	}
	result, ok := ransac.Fit[geometry.Point2D, geometry.PolyCurve](PolyModel5{}, pts, opts)
	if !ok {
		return TextLine{}, false
	}
	inlierGlyphs := make([]Glyph, len(result.Inliers))
	for i, ix := range result.Inliers {
		inlierGlyphs[i] = glyphs[ix]
	}
	sort.Slice(inlierGlyphs, func(i, j int) bool {
		return inlierGlyphs[i].Point.X < inlierGlyphs[j].Point.X
	})
	return TextLine{Glyphs: inlierGlyphs, Curve: result.Fitted}, true
}

// MergeLines merges text lines whose baselines are close enough in Y (at
// shared X ranges) to plausibly be the same physical line split by the
// initial clustering pass (spec §4.4: "greedy merge pass"; grounded on
// dewarp.py's merge_lines).
func MergeLines(lines []TextLine, yThresh float64) []TextLine {
	merged := make([]TextLine, 0, len(lines))
	used := make([]bool, len(lines))
	for i := range lines {
		if used[i] {
			continue
		}
		cur := lines[i]
		for j := i + 1; j < len(lines); j++ {
			if used[j] {
				continue
			}
			if linesClose(cur, lines[j], yThresh) {
				cur = combineLines(cur, lines[j])
				used[j] = true
			}
		}
		merged = append(merged, cur)
	}
	return merged
}

func linesClose(a, b TextLine, yThresh float64) bool {
	// Compare the baselines at the midpoint of their overlapping X range;
	// lines with no X overlap are never merged.
	abox := geometry.FromPoints(a.Points())
	bbox := geometry.FromPoints(b.Points())
	lo, hi := max64(abox.X0, bbox.X0), min64(abox.X1, bbox.X1)
	if lo >= hi {
		return false
	}
	mid := (lo + hi) / 2
	return absf(a.Curve.Eval(mid)-b.Curve.Eval(mid)) < yThresh
}

func combineLines(a, b TextLine) TextLine {
	glyphs := append(append([]Glyph{}, a.Glyphs...), b.Glyphs...)
	sort.Slice(glyphs, func(i, j int) bool { return glyphs[i].Point.X < glyphs[j].Point.X })
	pts := make([]geometry.Point2D, len(glyphs))
	for i, g := range glyphs {
		pts[i] = g.Point
	}
	curve, ok := fitPoly(pts, Degree)
	if !ok {
		curve = a.Curve
	}
	return TextLine{Glyphs: glyphs, Curve: curve}
}

func max64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// RemoveOutliers drops lines with fewer than minGlyphs glyphs (spec §4.4).
// It applies a fixed minimum only; it does not compare a line's glyph count
// with the rest of the page.
func RemoveOutliers(lines []TextLine, minGlyphs int) []TextLine {
	out := make([]TextLine, 0, len(lines))
	for _, l := range lines {
		if len(l.Glyphs) >= minGlyphs {
			out = append(out, l)
		}
	}
	return out
}
