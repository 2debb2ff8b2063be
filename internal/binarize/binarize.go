// Package binarize provides the pluggable Binarizer collaborator (spec §6)
// plus a default gocv-backed adaptive-threshold implementation, following
// the teacher's gocv call style (CvtColor/Threshold/GaussianBlur chains).
package binarize

import (
	"image"

	"gocv.io/x/gocv"
)

// Binarizer converts a grayscale or color page image to a binary (text vs.
// background) image. It is an External Interface: the line detector and
// batch driver depend on it only through this interface (spec §6).
type Binarizer interface {
	Binarize(src gocv.Mat) gocv.Mat
}

// AdaptiveThreshold is the default Binarizer: Gaussian blur to suppress
// scan noise, then adaptive mean thresholding, matching the teacher's
// gocv.GaussianBlur + gocv.Threshold idiom used elsewhere in the pack for
// glyph/feature extraction.
type AdaptiveThreshold struct {
	BlockSize int
	C         float64
}

// DefaultAdaptiveThreshold returns typical tuning for 300-600 DPI scans.
func DefaultAdaptiveThreshold() AdaptiveThreshold {
	return AdaptiveThreshold{BlockSize: 31, C: 15}
}

func (a AdaptiveThreshold) Binarize(src gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	defer gray.Close()
	if src.Channels() > 1 {
		gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)
	} else {
		src.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, newKernelSize(3), 0, 0, gocv.BorderDefault)

	dst := gocv.NewMat()
	gocv.AdaptiveThreshold(blurred, &dst, 255, gocv.AdaptiveThresholdMean, gocv.ThresholdBinaryInv, a.BlockSize, a.C)
	return dst
}

func newKernelSize(k int) image.Point {
	// Kept as a tiny local helper so the Binarize body stays a direct call
	// chain mirroring the teacher's style.
	return image.Point{X: k, Y: k}
}
