// Package mesh builds the rectification sampling mesh from a fitted camera
// pose and cylindrical surface: a regular grid in world (GCS) coordinates,
// projected back to image coordinates, then arc-length resampled along both
// axes in image space for the remapper (spec §4.7: "mesh_XYZ construction").
package mesh

import (
	"pagedewarp/internal/camera"
	"pagedewarp/pkg/geometry"
)

// Grid is a 2-D mesh of image-space sample points, Rows x Cols.
type Grid struct {
	Rows, Cols int
	Points     []geometry.Point2D // row-major, length Rows*Cols
}

// At returns the point at (row, col).
func (g Grid) At(row, col int) geometry.Point2D {
	return g.Points[row*g.Cols+col]
}

// BuildXYZ constructs the world-frame mesh corners: Rows*Cols points lying
// on the cylindrical surface z=surface.Eval(x), spanning the expanded
// world-frame bounding box (spec: "box_XYZ expanded 1%").
func BuildXYZ(box geometry.Box, surface geometry.PolyCurve, rows, cols int) []camera.FocalPoint3D {
	pts := make([]camera.FocalPoint3D, 0, rows*cols)
	for r := 0; r < rows; r++ {
		y := box.Y0 + (box.Y1-box.Y0)*float64(r)/float64(rows-1)
		for c := 0; c < cols; c++ {
			x := box.X0 + (box.X1-box.X0)*float64(c)/float64(cols-1)
			pts = append(pts, camera.FocalPoint3D{X: x, Y: y, Z: surface.Eval(x)})
		}
	}
	return pts
}

// Project maps a world-frame XYZ mesh back to image coordinates through the
// fitted pose (spec: "gcs_to_image mapping to produce the 2-D sampling
// mesh").
func Project(xyz []camera.FocalPoint3D, o geometry.Point2D, r camera.Rotation, f float64, rows, cols int) Grid {
	pts := make([]geometry.Point2D, len(xyz))
	for i, p := range xyz {
		pts[i] = camera.GCSToImage(p, o, r, f)
	}
	return Grid{Rows: rows, Cols: cols, Points: pts}
}

// ResampleRows arc-length resamples every row of the grid to newCols evenly
// spaced columns, preserving row count (spec §4.3: arc-length resampling of
// sampled polylines for mesh column spacing).
func ResampleRows(g Grid, newCols int) Grid {
	out := Grid{Rows: g.Rows, Cols: newCols, Points: make([]geometry.Point2D, g.Rows*newCols)}
	for r := 0; r < g.Rows; r++ {
		xs := make([]float64, g.Cols)
		ys := make([]float64, g.Cols)
		for c := 0; c < g.Cols; c++ {
			p := g.At(r, c)
			xs[c], ys[c] = p.X, p.Y
		}
		rxs, rys, _ := geometry.ArcLengthResample(xs, ys, newCols)
		for c := 0; c < newCols; c++ {
			out.Points[r*newCols+c] = geometry.Point2D{X: rxs[c], Y: rys[c]}
		}
	}
	return out
}

// ResampleCols arc-length resamples every column of the grid to newRows
// evenly spaced rows, preserving column count (spec §4.3: arc-length
// resampling for mesh row spacing).
func ResampleCols(g Grid, newRows int) Grid {
	out := Grid{Rows: newRows, Cols: g.Cols, Points: make([]geometry.Point2D, newRows*g.Cols)}
	for c := 0; c < g.Cols; c++ {
		xs := make([]float64, g.Rows)
		ys := make([]float64, g.Rows)
		for r := 0; r < g.Rows; r++ {
			p := g.At(r, c)
			xs[r], ys[r] = p.X, p.Y
		}
		rxs, rys, _ := geometry.ArcLengthResample(xs, ys, newRows)
		for r := 0; r < newRows; r++ {
			out.Points[r*g.Cols+c] = geometry.Point2D{X: rxs[r], Y: rys[r]}
		}
	}
	return out
}
