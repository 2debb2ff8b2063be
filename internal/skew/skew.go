// Package skew detects and corrects small in-plane page rotation prior to
// the main rectification pass (SPEC_FULL §12 "skew detection"; adapted from
// the teacher's internal/alignment/transform.go RotateImage/WarpAffine
// idiom for building and applying an AffineTransform).
package skew

import (
	"math"

	"pagedewarp/pkg/geometry"
)

// EstimateAngle returns the dominant skew angle (radians) of a set of
// baseline polynomials, as the median of their slopes evaluated at each
// line's own midpoint X — a skew estimate robust to a few outlier lines
// without needing a full RANSAC pass of its own.
func EstimateAngle(slopes []float64) float64 {
	if len(slopes) == 0 {
		return 0
	}
	sorted := append([]float64{}, slopes...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1] > sorted[j]; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	m := sorted[len(sorted)/2]
	return math.Atan(m)
}

// CorrectionTransform builds the affine transform that rotates an image of
// size (w, h) about its center by -angle, undoing the estimated skew
// (mirrors RotateImage's "rotate about center" construction).
func CorrectionTransform(angle float64, w, h int) geometry.AffineTransform {
	center := geometry.Point2D{X: float64(w) / 2, Y: float64(h) / 2}
	return geometry.RotationAbout(-angle, center)
}
