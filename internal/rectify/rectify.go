package rectify

import (
	"pagedewarp/internal/baseline"
	"pagedewarp/internal/camera"
	"pagedewarp/internal/finedewarp"
	"pagedewarp/internal/mesh"
	"pagedewarp/internal/newton"
	"pagedewarp/internal/vanish"
	"pagedewarp/pkg/geometry"
)

// MinUsableLines is the fewest text baselines the joint optimizer can
// meaningfully constrain (spec §7: InsufficientLinesError threshold).
const MinUsableLines = 3

// Page is the result of a successful RectifyPage call: the fitted pose,
// surface, per-line offsets, and the mesh ready to hand to a Remapper.
type Page struct {
	Pose     camera.Rotation
	Surface  geometry.PolyCurve
	LineOffs []float64
	Mesh     mesh.Grid
	Aspect   float64
}

// RectifyPage runs the full geometry pipeline (spec §4: vanishing-point
// estimation, joint pose/surface optimization, mesh construction) over a
// set of already-detected text lines and the page's pixel dimensions. It
// does not itself binarize, detect lines, or remap pixels — those stages
// are pluggable collaborators the caller wires in separately (spec §6).
func RectifyPage(lines []baseline.TextLine, o geometry.Point2D, width, height int, opts Options) (Page, error) {
	log := newLogger(opts.DebugDir)
	defer log.Close()

	lines = baseline.RemoveOutliers(lines, 3)
	if len(lines) < MinUsableLines {
		return Page{}, &InsufficientLinesError{Found: len(lines), Required: MinUsableLines}
	}
	log.Printf("rectify: %d usable text lines", len(lines))

	ah := vanish.EstimateAH(lines)
	vp, ok := vanish.EstimateInitial(lines, ah, opts.RansacSeed)
	if !ok {
		return Page{}, &DegenerateVanishingPointError{Reason: "no concurrent tangent lines"}
	}
	vp = vanish.Refine(lines, vp, o, opts.FocalLength, opts.NumLongitudes, opts.RefineIterations)
	log.Printf("rectify: vanishing point estimate %v", vp)

	aspect := opts.AspectOverride
	if aspect == 0 {
		minX, minY := float64(width), float64(height)
		maxX, maxY := 0.0, 0.0
		for _, l := range lines {
			box := geometry.FromPoints(l.Points())
			if box.X0 < minX {
				minX = box.X0
			}
			if box.X1 > maxX {
				maxX = box.X1
			}
			if box.Y0 < minY {
				minY = box.Y0
			}
			if box.Y1 > maxY {
				maxY = box.Y1
			}
		}
		aspect = vanish.AspectRatio(vp, o, opts.FocalLength, minX, maxX, minY, maxY)
	}
	log.Printf("rectify: aspect ratio %g", aspect)

	lmOpts := opts.LM
	if opts.Ftol != 0 {
		lmOpts.Tolerance = opts.Ftol
	}
	pose, surface, lineOffs, err := Solve(lines, o, opts.FocalLength, opts.SurfaceDegree, vp, lmOpts)
	if err != nil {
		log.Printf("rectify: joint optimizer did not fully converge: %v", err)
	}

	box := worldBox(lines, o, opts.FocalLength, pose, surface).Expand(0.01)
	if !box.Nonempty() {
		return Page{}, &EmptyMeshError{}
	}

	const meshRows, meshCols = 40, 30
	xyz := mesh.BuildXYZ(box, surface, meshRows, meshCols)
	grid := mesh.Project(xyz, o, pose, opts.FocalLength, meshRows, meshCols)
	grid = mesh.ResampleRows(grid, meshCols)
	grid = mesh.ResampleCols(grid, meshRows)

	if opts.FineDewarp {
		rowOffsets := perRowResiduals(lines, lineOffs, meshRows)
		grid = finedewarp.Apply(grid, rowOffsets, finedewarp.Options{Enabled: true, SmoothSpan: 3})
		log.Printf("rectify: fine dewarp applied")
	}

	return Page{Pose: pose, Surface: surface, LineOffs: lineOffs, Mesh: grid, Aspect: aspect}, nil
}

// perRowResiduals maps each text line's mean glyph-to-baseline residual
// onto the mesh row nearest its vertical position, giving finedewarp.Apply
// one smoothable offset per output row (spec SPEC_FULL §12: fine dewarp via
// per-glyph residual interpolation).
func perRowResiduals(lines []baseline.TextLine, lineOffs []float64, meshRows int) []float64 {
	out := make([]float64, meshRows)
	if len(lines) == 0 {
		return out
	}
	minY, maxY := lines[0].Curve.Eval(lines[0].Points()[0].X), lines[0].Curve.Eval(lines[0].Points()[0].X)
	for _, l := range lines {
		box := geometry.FromPoints(l.Points())
		if box.Y0 < minY {
			minY = box.Y0
		}
		if box.Y1 > maxY {
			maxY = box.Y1
		}
	}
	span := maxY - minY
	if span <= 0 {
		return out
	}
	for i, l := range lines {
		box := geometry.FromPoints(l.Points())
		mid := (box.Y0 + box.Y1) / 2
		row := int(float64(meshRows-1) * (mid - minY) / span)
		if row < 0 {
			row = 0
		}
		if row >= meshRows {
			row = meshRows - 1
		}
		var residual float64
		if i < len(lineOffs) {
			for _, g := range l.Glyphs {
				residual += g.Point.Y - lineOffs[i]
			}
			if len(l.Glyphs) > 0 {
				residual /= float64(len(l.Glyphs))
			}
		}
		out[row] = residual
	}
	return out
}

// worldBox computes the world-frame bounding box spanned by all glyph rays
// intersected with the fitted surface, forming the basis for the mesh
// extent (spec §4.7: "box_XYZ").
func worldBox(lines []baseline.TextLine, o geometry.Point2D, f float64, r camera.Rotation, surface geometry.PolyCurve) geometry.Box {
	var pts []geometry.Point2D
	for _, l := range lines {
		for _, g := range l.Glyphs {
			focal := camera.ImageToFocalPlane(g.Point, o, f)
			p, err := newton.Intersect(focal, r, surface)
			if err != nil {
				continue
			}
			pts = append(pts, geometry.Point2D{X: p.X, Y: p.Y})
		}
	}
	if len(pts) == 0 {
		return geometry.Box{}
	}
	return geometry.FromPoints(pts)
}
