package rectify

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"pagedewarp/internal/baseline"
	"pagedewarp/internal/camera"
	"pagedewarp/internal/lm"
	"pagedewarp/internal/newton"
	"pagedewarp/pkg/geometry"
)

// pointLine pairs a detected glyph's focal-plane point with the index of
// its owning text line, flattened across all lines for the residual loop.
type pointLine struct {
	focal camera.FocalPoint3D
	line  int
}

// buildResidualFunc assembles the joint straightness-cost residual function
// over the packed parameter vector (spec §4.6: E_str). For each glyph point
// it ray/surface-intersects with the candidate cylindrical surface under
// the candidate pose, then penalizes the point's deviation from its line's
// own absorbed vertical offset l_m.
func buildResidualFunc(points []pointLine, layout packedParams) lm.Func {
	return func(params []float64) []float64 {
		theta := layout.theta(params)
		surface := geometry.NewPolyCurve(layout.surfaceCoeffs(params))
		r := camera.RTheta(theta)

		out := make([]float64, len(points))
		for i, pl := range points {
			p, err := newton.Intersect(pl.focal, r, surface)
			l := layout.lineOffset(params, pl.line)
			if err != nil {
				// Non-convergent rays fall back to the focal-plane Y of
				// the point rather than aborting the whole solve; the
				// surrounding optimizer will still see a large residual
				// and steer away from this region of parameter space.
				out[i] = pl.focal.Y - l
				continue
			}
			out[i] = p.Y - l
		}
		return out
	}
}

// buildAnalyticJacobianFunc assembles the closed-form Jacobian of E_str
// (spec §4.6) via implicit differentiation through the Newton ray/surface
// solve: each residual r = q_y(theta,a) - l_m, where q_y(t) is evaluated at
// the t solving F(t)=q_z(t)-g(q_x(t))=0. Differentiating F=0 gives dt/dtheta_i
// and dt/da_k in closed form, which then chain into dq_y/dtheta_i and
// dq_y/da_k. The one piece that is not hand-derived symbolically is dR/dtheta
// itself (camera.DRTheta, a narrow central finite difference on the
// Rodrigues rotation) — everything downstream of it here is exact. l_m
// columns are a constant -1 block, one column per line.
func buildAnalyticJacobianFunc(points []pointLine, layout packedParams, f float64) lm.JacobianFunc {
	of := camera.Of(f)
	return func(params []float64) *mat.Dense {
		theta := layout.theta(params)
		r := camera.RTheta(theta)
		dR := camera.DRTheta(theta)
		surface := geometry.NewPolyCurve(layout.surfaceCoeffs(params))
		rOf := r.Apply(of)

		jac := mat.NewDense(len(points), layout.size(), nil)

		for row, pl := range points {
			p := pl.focal
			row1p := r.Row1(p)
			row2p := r.Row2(p)
			row3p := r.Row3(p)

			t, _, err := newton.IntersectT(p, r, surface)
			if err != nil {
				jac.Set(row, layout.lineCol(pl.line), -1)
				continue
			}

			x := row1p*t - rOf.X
			slope := surface.Deriv(x)
			denom := row3p - slope*row1p

			for i := 0; i < 3; i++ {
				a := dR[i].Row1(p)*t - dR[i][0][2]*f
				c := dR[i].Row3(p)*t - dR[i][2][2]*f
				var dtDtheta float64
				if denom != 0 {
					dtDtheta = -(c - slope*a) / denom
				}
				term1 := dR[i].Row2(p) * t
				term2 := row2p * dtDtheta
				term3 := -dR[i][1][2] * f
				jac.Set(row, i, term1+term2+term3)
			}

			for k := 0; k < layout.degree; k++ {
				var dtDak float64
				if denom != 0 {
					dtDak = geometry.Power(x, k) / denom
				}
				jac.Set(row, thetaLen+k, row2p*dtDak)
			}
			// align columns carry no gradient: E_align is declared by the
			// spec but never implemented (see DESIGN.md).

			jac.Set(row, layout.lineCol(pl.line), -1)
		}
		return jac
	}
}

// seedTheta0 derives the joint optimizer's initial pitch from the estimated
// vanishing point (spec §4.6): a pure rotation about the x-axis that would
// place the vanishing point on the camera's optical axis, leaving roll and
// yaw at zero to let the optimizer fit them from the data.
func seedTheta0(vp, o geometry.Point2D, f float64) [3]float64 {
	return [3]float64{math.Atan2(-(vp.Y - o.Y), f) - math.Pi/2, 0, 0}
}

// Solve runs the joint optimizer over the detected text lines and an
// initial surface/pose guess, returning the fitted pose (as a rotation) and
// cylindrical surface. vp is the page's estimated vanishing point, used to
// seed the pose's initial pitch (spec §4.6: theta0 = atan2(-v_y, f) - pi/2).
func Solve(lines []baseline.TextLine, o geometry.Point2D, f float64, degree int, vp geometry.Point2D, opts lm.Options) (camera.Rotation, geometry.PolyCurve, []float64, error) {
	layout := newPackedParams(degree, len(lines))

	var points []pointLine
	for li, line := range lines {
		for _, g := range line.Glyphs {
			focal := camera.ImageToFocalPlane(g.Point, o, f)
			points = append(points, pointLine{focal: focal, line: li})
		}
	}

	theta0 := seedTheta0(vp, o, f)
	r0 := camera.RTheta(theta0)
	flat := geometry.ZeroPolyCurve(degree)

	lineSum := make([]float64, len(lines))
	lineCount := make([]int, len(lines))
	for _, pl := range points {
		_, q, err := newton.IntersectT(pl.focal, r0, flat)
		if err != nil {
			continue
		}
		lineSum[pl.line] += q.Y
		lineCount[pl.line]++
	}
	lineMeanY := make([]float64, len(lines))
	for li := range lines {
		if lineCount[li] > 0 {
			lineMeanY[li] = lineSum[li] / float64(lineCount[li])
		}
	}

	initial := layout.pack(theta0, make([]float64, degree), [2]float64{}, lineMeanY)

	residualFn := buildResidualFunc(points, layout)
	jacFn := buildAnalyticJacobianFunc(points, layout, f)

	result, err := lm.Solve(residualFn, jacFn, initial, opts)
	params := result.Params
	theta := layout.theta(params)
	surface := geometry.NewPolyCurve(append([]float64{}, layout.surfaceCoeffs(params)...))
	l := make([]float64, len(lines))
	for li := range lines {
		l[li] = layout.lineOffset(params, li)
	}
	return camera.RTheta(theta), surface, l, err
}
