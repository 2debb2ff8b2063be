// Package vanish estimates the page's vanishing point and aspect ratio from
// the fitted text baselines (spec §4.4): an initial RANSAC line fit of the
// left/right column edges, followed by iterative longitude-convergence
// refinement; grounded on dewarp.py's estimate_vanishing/vanishing_point
// (N_LONGS=15 longitude samples, 5 refinement passes).
package vanish

import (
	"math"
	"sort"

	"pagedewarp/internal/baseline"
	"pagedewarp/internal/ransac"
	"pagedewarp/pkg/geometry"
)

// NumLongitudes is the default number of longitude (column) lines sampled
// per refinement pass, matching the original's N_LONGS.
const NumLongitudes = 15

// RefineIterations is the default number of vanishing-point refinement
// passes.
const RefineIterations = 5

// EstimateAH derives a dominant-character-height stand-in (spec §4.4's AH)
// from the detected glyphs' bounding-box heights, for callers whose
// Detector does not separately report it: the median glyph height across
// every line, a cheap proxy for the page's typical letter height.
func EstimateAH(lines []baseline.TextLine) float64 {
	var heights []float64
	for _, l := range lines {
		for _, g := range l.Glyphs {
			heights = append(heights, g.Height)
		}
	}
	if len(heights) == 0 {
		return 1
	}
	sort.Float64s(heights)
	return heights[len(heights)/2]
}

// EstimateInitial computes the stage-1 vanishing point (spec §4.4): RANSAC-
// fit the lines' left-column and right-column edges, each to a line of the
// form x = m*y + b with inlier threshold ah/10, then intersect the two
// fitted lines. seed makes the RANSAC draw reproducible. Falls back to the
// geometric intersection of the topmost and bottommost lines' naive
// endpoint extrapolations when either fit fails.
func EstimateInitial(lines []baseline.TextLine, ah float64, seed int64) (geometry.Point2D, bool) {
	var lefts, rights []geometry.Point2D
	for _, l := range lines {
		if len(l.Glyphs) == 0 {
			continue
		}
		first, last := l.Glyphs[0], l.Glyphs[len(l.Glyphs)-1]
		lefts = append(lefts, geometry.Point2D{X: first.Point.X - first.Width/2, Y: first.Point.Y})
		rights = append(rights, geometry.Point2D{X: last.Point.X + last.Width/2, Y: last.Point.Y})
	}

	opts := ransac.NewOptions(baseline.MinSamplesLinearXModel, 500, ah/10, seed)
	left, leftOK := ransac.Fit[geometry.Point2D, geometry.Line2D](baseline.LinearXModel{}, lefts, opts)
	right, rightOK := ransac.Fit[geometry.Point2D, geometry.Line2D](baseline.LinearXModel{}, rights, opts)
	if leftOK && rightOK {
		if vp, ok := left.Fitted.Intersect(right.Fitted); ok {
			return vp, true
		}
	}
	return naiveVanishingPoint(lines)
}

// naiveVanishingPoint is the fallback for when RANSAC finds no model (spec
// §4.4): intersect the naive endpoint-to-endpoint extrapolations of the
// topmost and bottommost baselines.
func naiveVanishingPoint(lines []baseline.TextLine) (geometry.Point2D, bool) {
	var usable []baseline.TextLine
	for _, l := range lines {
		if len(l.Glyphs) >= 2 {
			usable = append(usable, l)
		}
	}
	if len(usable) < 2 {
		return geometry.Point2D{}, false
	}
	sort.Slice(usable, func(i, j int) bool { return meanY(usable[i]) < meanY(usable[j]) })
	top, bottom := usable[0], usable[len(usable)-1]
	topPts, bottomPts := top.Points(), bottom.Points()
	topLine := geometry.LineFromPoints(topPts[0], topPts[len(topPts)-1])
	bottomLine := geometry.LineFromPoints(bottomPts[0], bottomPts[len(bottomPts)-1])
	return topLine.Intersect(bottomLine)
}

func meanY(l baseline.TextLine) float64 {
	if len(l.Glyphs) == 0 {
		return 0
	}
	var sum float64
	for _, g := range l.Glyphs {
		sum += g.Point.Y
	}
	return sum / float64(len(l.Glyphs))
}

// Refine implements the stage-2 vanishing-point refinement (spec §4.4):
// pick the longest line as reference C0 (tie-break: lower y), sample
// numLongs interior x-points along it, build a longitude line from the
// current estimate through each sample, intersect every longitude with
// every baseline (including C0, at the very point that defined the
// longitude, following the original's inclusion of it in the tangent set),
// form a tangent at each intersection from that baseline's own derivative,
// take the best-intersection of those tangents as the longitude's
// convergence point, then fit a line through all convergence points and
// recover v from its O-centered slope/intercept (v_y = -f^2/L_O.b,
// v_x = -m*v_y). Repeats iterations times, leaving v unchanged on any pass
// that yields no usable fit.
func Refine(lines []baseline.TextLine, initial, o geometry.Point2D, f float64, numLongs, iterations int) geometry.Point2D {
	vp := initial
	if len(lines) == 0 {
		return vp
	}
	for iter := 0; iter < iterations; iter++ {
		c0 := longestLine(lines)
		pts := c0.Points()
		if len(pts) < 2 {
			continue
		}
		box := geometry.FromPoints(pts)
		xs := interiorSamples(box.X0, box.X1, numLongs)

		var convergences []geometry.Point2D
		for _, x := range xs {
			sample := geometry.Point2D{X: x, Y: c0.Curve.Eval(x)}
			longitude := geometry.LineFromPoints(vp, sample)

			var tangents []geometry.Line2D
			for _, l := range lines {
				hit, ok := longitude.IntersectPoly(l.Curve, x)
				if !ok {
					continue
				}
				m := l.Curve.Deriv(hit.X)
				tangents = append(tangents, geometry.LineFromPointSlope(hit, m))
			}
			if conv, ok := geometry.BestIntersection(tangents); ok {
				convergences = append(convergences, conv)
			}
		}
		if len(convergences) < 2 {
			continue
		}
		fit, ok := geometry.FitLine(convergences)
		if !ok {
			continue
		}
		fitO := fit.Offset(o)
		m, b, ok := fitO.XForm()
		if !ok || b == 0 {
			continue
		}
		vy := -(f * f) / b
		vx := -m * vy
		vp = geometry.Point2D{X: vx + o.X, Y: vy + o.Y}
	}
	return vp
}

// longestLine returns the line with the widest X span, tie-broken by the
// lower mean y (spec §4.4).
func longestLine(lines []baseline.TextLine) baseline.TextLine {
	best := lines[0]
	bestSpan := math.Inf(-1)
	bestY := math.Inf(1)
	for _, l := range lines {
		pts := l.Points()
		if len(pts) < 2 {
			continue
		}
		box := geometry.FromPoints(pts)
		span := box.X1 - box.X0
		y := meanY(l)
		if span > bestSpan || (span == bestSpan && y < bestY) {
			best, bestSpan, bestY = l, span, y
		}
	}
	return best
}

// interiorSamples returns n points evenly spaced strictly between x0 and
// x1, matching linspace(x0, x1, n+2)[1:-1].
func interiorSamples(x0, x1 float64, n int) []float64 {
	out := make([]float64, n)
	step := (x1 - x0) / float64(n+1)
	for i := 0; i < n; i++ {
		out[i] = x0 + step*float64(i+1)
	}
	return out
}

// DefaultAspectRatio is the page aspect ratio (width/height) used when the
// vanishing-point-based estimate is degenerate.
const DefaultAspectRatio = 1.7

// AspectRatio estimates the page's physical aspect ratio (width/height)
// from the horizontal vanishing point, focal length, and the axis-aligned
// extent of the detected text. The horizontal extent is assumed
// undistorted by a pure pitch tilt about the x-axis, while the vertical
// extent is foreshortened by cos(theta), where theta is the same tilt
// angle spec §4.6 derives from the vanishing point to seed the joint
// optimizer (theta = atan(f / (v_y - O_y)), the inverse of its
// theta0 = atan2(-v_y, f) - pi/2 relationship). Correcting the vertical
// extent for that foreshortening recovers the ratio. This is a simplified
// stand-in for the original's full arc-length/C0-C1-based aspect_ratio,
// which depends on directrix data not available at this call site (see
// DESIGN.md); it falls back to DefaultAspectRatio on a degenerate input.
func AspectRatio(vp, o geometry.Point2D, f, leftX, rightX, topY, bottomY float64) float64 {
	wSpan := rightX - leftX
	hSpan := bottomY - topY
	if wSpan <= 1 || hSpan <= 1 {
		return DefaultAspectRatio
	}
	vy := vp.Y - o.Y
	if vy == 0 {
		return DefaultAspectRatio
	}
	theta := math.Atan(f / vy)
	aspect := (wSpan * math.Cos(theta)) / hSpan
	if aspect <= 0 || math.IsNaN(aspect) || math.IsInf(aspect, 0) {
		return DefaultAspectRatio
	}
	return aspect
}
