// Package finedewarp implements the optional fine-dewarping post-process
// that locally perturbs the rectification mesh to straighten individual
// baselines beyond what the global cylindrical model captures. It is
// disabled by default (SPEC_FULL §12 "fine dewarp": the original's
// dewarp_fine is likewise disabled, built on SmoothBivariateSpline fitting
// that this package reproduces the intent of — not the exact spline
// library — via a per-row vertical offset smoothed across neighboring rows
// and applied uniformly to every column of that row).
package finedewarp

import (
	"pagedewarp/internal/mesh"
	"pagedewarp/pkg/geometry"
)

// Options configures the fine-dewarp pass. Enabled defaults to false,
// matching the original's disabled-by-default dewarp_fine.
type Options struct {
	Enabled     bool
	SmoothSpan  int // rows on each side averaged into each row's offset (window of 2*SmoothSpan+1, clipped at the edges)
}

// DefaultOptions returns the disabled default.
func DefaultOptions() Options {
	return Options{Enabled: false, SmoothSpan: 3}
}

// Apply perturbs each mesh row's Y coordinates by a smoothed local offset
// derived from rowOffsets (one measured vertical deviation per row, e.g.
// the residual between a line's glyphs and its fitted baseline). When
// opts.Enabled is false, it returns grid unchanged.
func Apply(grid mesh.Grid, rowOffsets []float64, opts Options) mesh.Grid {
	if !opts.Enabled || len(rowOffsets) != grid.Rows {
		return grid
	}
	smoothed := smooth(rowOffsets, opts.SmoothSpan)

	out := mesh.Grid{Rows: grid.Rows, Cols: grid.Cols, Points: make([]geometry.Point2D, len(grid.Points))}
	for r := 0; r < grid.Rows; r++ {
		for c := 0; c < grid.Cols; c++ {
			p := grid.At(r, c)
			out.Points[r*grid.Cols+c] = geometry.Point2D{X: p.X, Y: p.Y + smoothed[r]}
		}
	}
	return out
}

func smooth(values []float64, span int) []float64 {
	n := len(values)
	out := make([]float64, n)
	for i := range values {
		lo, hi := i-span, i+span
		if lo < 0 {
			lo = 0
		}
		if hi >= n {
			hi = n - 1
		}
		var sum float64
		count := 0
		for k := lo; k <= hi; k++ {
			sum += values[k]
			count++
		}
		out[i] = sum / float64(count)
	}
	return out
}
