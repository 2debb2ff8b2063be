// Package remap provides the pluggable Image remapper collaborator (spec
// §6: External Interfaces) plus a default gocv-backed implementation,
// following the teacher's heavy gocv.io/x/gocv usage style
// (internal/alignment/transform.go: WarpAffine via gocv.NewMatWithSize /
// gocv.WarpAffineWithParams).
package remap

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"pagedewarp/internal/mesh"
	"pagedewarp/pkg/geometry"
)

// Remapper rectifies a source image given a target mesh of source-image
// sample coordinates, producing a grid-sized output image. It is an
// External Interface the core pipeline depends on only through this
// interface, so batch drivers or tests may substitute another
// implementation (spec §6).
type Remapper interface {
	Remap(src gocv.Mat, grid mesh.Grid) (gocv.Mat, error)
}

// GocvRemapper is the default Remapper, built on gocv.Remap with bilinear
// interpolation.
type GocvRemapper struct{}

// Remap builds the per-pixel coordinate maps from grid and applies
// gocv.Remap, matching the teacher's pattern of building a gocv.Mat
// transform and calling into OpenCV rather than hand-rolling pixel
// sampling.
func (GocvRemapper) Remap(src gocv.Mat, grid mesh.Grid) (gocv.Mat, error) {
	if grid.Rows < 2 || grid.Cols < 2 {
		return gocv.Mat{}, fmt.Errorf("remap: grid too small (%dx%d)", grid.Rows, grid.Cols)
	}
	mapX := gocv.NewMatWithSize(grid.Rows, grid.Cols, gocv.MatTypeCV32F)
	mapY := gocv.NewMatWithSize(grid.Rows, grid.Cols, gocv.MatTypeCV32F)
	defer mapX.Close()
	defer mapY.Close()

	for r := 0; r < grid.Rows; r++ {
		for c := 0; c < grid.Cols; c++ {
			p := grid.At(r, c)
			mapX.SetFloatAt(r, c, float32(p.X))
			mapY.SetFloatAt(r, c, float32(p.Y))
		}
	}

	dst := gocv.NewMat()
	gocv.Remap(src, &dst, &mapX, &mapY, gocv.InterpolationLinear, gocv.BorderConstant, gocv.NewScalar(255, 255, 255, 0))
	return dst, nil
}

// ApplyAffine is a small wrapper around gocv.WarpAffineWithParams for the
// skew-correction step (internal/skew), kept as a thin remap-package helper
// since it shares the transform-matrix construction idiom with Remap.
func ApplyAffine(src gocv.Mat, t geometry.AffineTransform, outW, outH int) gocv.Mat {
	m := t.ToMatrix()
	transform := gocv.NewMatWithSize(2, 3, gocv.MatTypeCV64F)
	defer transform.Close()
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			transform.SetDoubleAt(i, j, m[i][j])
		}
	}
	dst := gocv.NewMat()
	gocv.WarpAffineWithParams(src, &dst, transform, image.Pt(outW, outH), gocv.InterpolationLinear, gocv.BorderConstant, gocv.NewScalar(255, 255, 255, 0))
	return dst
}
