package geometry

import (
	"image"
	"math"
)

// Box is an axis-aligned crop region (x0, y0, x1, y1), following the
// convention x0<=x1, y0<=y1. A Box accumulated from zero points (Null) can
// have x0>x1; callers must check Nonempty before using W/H or Apply.
type Box struct {
	X0, Y0, X1, Y1 float64
}

// FromRect builds a Box from a top-left corner and dimensions.
func FromRect(x, y, w, h float64) Box {
	return Box{X0: x, Y0: y, X1: x + w, Y1: y + h}
}

// FullBox spans the entire image.
func FullBox(w, h int) Box {
	return Box{X0: 0, Y0: 0, X1: float64(w), Y1: float64(h)}
}

// NullBox is an empty accumulator: its corners are inverted so that the
// first Union with any box yields that box.
func NullBox(w, h int) Box {
	return Box{X0: float64(w), Y0: float64(h), X1: 0, Y1: 0}
}

// W returns the box width.
func (b Box) W() float64 { return b.X1 - b.X0 }

// H returns the box height.
func (b Box) H() float64 { return b.Y1 - b.Y0 }

// Nonempty reports whether the box has positive area.
func (b Box) Nonempty() bool { return b.X1 > b.X0 && b.Y1 > b.Y0 }

// Intersect returns the overlap of two boxes. The result may be empty.
func (b Box) Intersect(o Box) Box {
	return Box{
		X0: math.Max(b.X0, o.X0),
		Y0: math.Max(b.Y0, o.Y0),
		X1: math.Min(b.X1, o.X1),
		Y1: math.Min(b.Y1, o.Y1),
	}
}

// Union returns the smallest box containing both boxes.
func (b Box) Union(o Box) Box {
	return Box{
		X0: math.Min(b.X0, o.X0),
		Y0: math.Min(b.Y0, o.Y0),
		X1: math.Max(b.X1, o.X1),
		Y1: math.Max(b.Y1, o.Y1),
	}
}

// UnionAll folds Union across a slice of boxes, starting from the first.
func UnionAll(boxes []Box) Box {
	out := boxes[0]
	for _, b := range boxes[1:] {
		out = out.Union(b)
	}
	return out
}

// Expand grows the box by a fraction of its width/height in every direction,
// used to pad the world-frame bounding box before meshing (spec: box_XYZ
// expanded 1%).
func (b Box) Expand(frac float64) Box {
	dw, dh := b.W()*frac, b.H()*frac
	return Box{X0: b.X0 - dw, Y0: b.Y0 - dh, X1: b.X1 + dw, Y1: b.Y1 + dh}
}

// FromPoints returns the bounding box of a set of points.
func FromPoints(points []Point2D) Box {
	if len(points) == 0 {
		return Box{}
	}
	b := Box{X0: points[0].X, Y0: points[0].Y, X1: points[0].X, Y1: points[0].Y}
	for _, p := range points[1:] {
		if p.X < b.X0 {
			b.X0 = p.X
		}
		if p.X > b.X1 {
			b.X1 = p.X
		}
		if p.Y < b.Y0 {
			b.Y0 = p.Y
		}
		if p.Y > b.Y1 {
			b.Y1 = p.Y
		}
	}
	return b
}

// ImageRect converts the box to an image.Rectangle, rounding outward.
func (b Box) ImageRect() image.Rectangle {
	return image.Rect(int(math.Floor(b.X0)), int(math.Floor(b.Y0)), int(math.Ceil(b.X1)), int(math.Ceil(b.Y1)))
}
