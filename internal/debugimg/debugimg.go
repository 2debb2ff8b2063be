// Package debugimg draws diagnostic overlays (detected glyphs, fitted
// baselines, the vanishing point, the rectification mesh) on top of a page
// image. The rectify pipeline does not call it: Options.DebugDir only
// mirrors the run's log to a file. It is
// adapted from the teacher's internal/image/composite.go layered-blend
// renderer, generalized from PCB trace/component overlays to dewarp
// diagnostics and built on pkg/colorutil's overlay palette.
package debugimg

import (
	"image"
	"image/color"
	"image/draw"

	"pagedewarp/internal/baseline"
	"pagedewarp/internal/mesh"
	"pagedewarp/pkg/colorutil"
	"pagedewarp/pkg/geometry"
)

// Canvas is a simple RGBA drawing surface over a base page image, mirroring
// the teacher's Composite/CompositeLayer layering but simplified to the
// handful of annotation layers a debug dump actually needs (glyphs,
// baselines, mesh) rather than a general N-layer blend stack.
type Canvas struct {
	img *image.RGBA
}

// NewCanvas copies base into a fresh RGBA canvas to draw on.
func NewCanvas(base image.Image) *Canvas {
	b := base.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, base, b.Min, draw.Src)
	return &Canvas{img: rgba}
}

// Image returns the annotated image.
func (c *Canvas) Image() image.Image { return c.img }

// DrawGlyphs marks each glyph's center with a small cyan cross.
func (c *Canvas) DrawGlyphs(glyphs []baseline.Glyph) {
	for _, g := range glyphs {
		c.drawCross(g.Point, colorutil.Cyan, 3)
	}
}

// DrawBaselines samples each fitted baseline curve across its glyph span
// and connects the samples with line segments in magenta.
func (c *Canvas) DrawBaselines(lines []baseline.TextLine) {
	for _, l := range lines {
		box := geometry.FromPoints(l.Points())
		const samples = 40
		var prev geometry.Point2D
		for i := 0; i <= samples; i++ {
			x := box.X0 + (box.X1-box.X0)*float64(i)/samples
			p := geometry.Point2D{X: x, Y: l.Curve.Eval(x)}
			if i > 0 {
				c.drawLine(prev, p, colorutil.Magenta)
			}
			prev = p
		}
	}
}

// DrawVanishingPoint marks the estimated vanishing point with a yellow
// cross, even when it falls outside the visible canvas.
func (c *Canvas) DrawVanishingPoint(p geometry.Point2D) {
	c.drawCross(p, colorutil.Yellow, 6)
}

// DrawMesh draws the rectification mesh's row and column lines in green.
func (c *Canvas) DrawMesh(g mesh.Grid) {
	for r := 0; r < g.Rows; r++ {
		for col := 1; col < g.Cols; col++ {
			c.drawLine(g.At(r, col-1), g.At(r, col), colorutil.Green)
		}
	}
	for col := 0; col < g.Cols; col++ {
		for r := 1; r < g.Rows; r++ {
			c.drawLine(g.At(r-1, col), g.At(r, col), colorutil.Green)
		}
	}
}

func (c *Canvas) drawCross(p geometry.Point2D, col color.Color, radius int) {
	cx, cy := int(p.X), int(p.Y)
	for d := -radius; d <= radius; d++ {
		c.setClamped(cx+d, cy, col)
		c.setClamped(cx, cy+d, col)
	}
}

// drawLine draws a simple Bresenham-style segment; debug overlays don't
// need anti-aliasing.
func (c *Canvas) drawLine(a, b geometry.Point2D, col color.Color) {
	x0, y0 := int(a.X), int(a.Y)
	x1, y1 := int(b.X), int(b.Y)
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	err := dx + dy
	for {
		c.setClamped(x0, y0, col)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) setClamped(x, y int, col color.Color) {
	if image.Pt(x, y).In(c.img.Bounds()) {
		c.img.Set(x, y, col)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
