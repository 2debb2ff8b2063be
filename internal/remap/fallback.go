package remap

import (
	"image"
	"image/color"

	"pagedewarp/internal/mesh"
)

// PureGoRemapper is a bilinear sampler written against the standard library
// image.Image rather than gocv.Mat. It does not implement the Remapper
// interface (it has RemapImage, not Remap), and it lives in the same package
// as GocvRemapper, so importing it still pulls in gocv.
type PureGoRemapper struct {
	Src image.Image
}

// RemapImage bilinearly samples Src at each grid point, producing a
// grid-sized output image.
func (p PureGoRemapper) RemapImage(grid mesh.Grid) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, grid.Cols, grid.Rows))
	bounds := p.Src.Bounds()
	for r := 0; r < grid.Rows; r++ {
		for c := 0; c < grid.Cols; c++ {
			pt := grid.At(r, c)
			out.Set(c, r, bilinearSample(p.Src, bounds, pt.X, pt.Y))
		}
	}
	return out
}

func bilinearSample(img image.Image, bounds image.Rectangle, x, y float64) color.Color {
	x0, y0 := int(x), int(y)
	if x0 < bounds.Min.X || y0 < bounds.Min.Y || x0+1 >= bounds.Max.X || y0+1 >= bounds.Max.Y {
		return color.White
	}
	fx, fy := x-float64(x0), y-float64(y0)

	c00 := img.At(x0, y0)
	c10 := img.At(x0+1, y0)
	c01 := img.At(x0, y0+1)
	c11 := img.At(x0+1, y0+1)

	return lerpColor(lerpColor(c00, c10, fx), lerpColor(c01, c11, fx), fy)
}

func lerpColor(a, b color.Color, t float64) color.Color {
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	return color.RGBA64{
		R: uint16(lerp(float64(ar), float64(br), t)),
		G: uint16(lerp(float64(ag), float64(bg), t)),
		B: uint16(lerp(float64(ab), float64(bb), t)),
		A: uint16(lerp(float64(aa), float64(ba), t)),
	}
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }
