// Package newton finds where a camera ray through an image point meets the
// cylindrical page surface z = g(x), by Newton iteration along the ray
// parameter t (spec §4.3: ray/surface intersection).
package newton

import (
	"fmt"
	"math"

	"pagedewarp/internal/camera"
	"pagedewarp/pkg/geometry"
)

// MaxIterations bounds the Newton loop; non-convergence within this many
// steps is reported as an error rather than silently returning a bad point.
const MaxIterations = 30

// Tolerance is the convergence threshold on the parameter update |dt|.
const Tolerance = 1e-8

// NonConvergenceError reports that the ray/surface intersection failed to
// settle within MaxIterations steps (spec §7: typed error for solver
// non-convergence).
type NonConvergenceError struct {
	Point      geometry.Point2D
	Iterations int
	LastDelta  float64
}

func (e *NonConvergenceError) Error() string {
	return fmt.Sprintf("newton: ray/surface intersection for point %v did not converge after %d iterations (last delta %g)",
		e.Point, e.Iterations, e.LastDelta)
}

// Intersect finds the point q(t) = R*(t*p - Of) where the camera ray through
// image point p meets the surface z = surface.Eval(x) (spec §4.3). focal is
// the point's projection onto the focal plane (camera.ImageToFocalPlane),
// already z=-f; Of=(0,0,f) is recovered from that same f. It discards the
// solved ray parameter t; callers that need it (the joint optimizer's
// analytic Jacobian) should call IntersectT directly.
func Intersect(focal camera.FocalPoint3D, r camera.Rotation, surface geometry.PolyCurve) (camera.FocalPoint3D, error) {
	_, q, err := IntersectT(focal, r, surface)
	return q, err
}

// IntersectT is Intersect but also returns the solved ray parameter t.
func IntersectT(focal camera.FocalPoint3D, r camera.Rotation, surface geometry.PolyCurve) (float64, camera.FocalPoint3D, error) {
	p := focal
	of := camera.Of(-p.Z)
	rOf := r.Apply(of)
	row1p := r.Row1(p)
	row3p := r.Row3(p)

	t := rOf.Z / row3p
	var delta float64
	iter := 0
	for ; iter < MaxIterations; iter++ {
		x := row1p*t - rOf.X
		z := row3p*t - rOf.Z
		fn := z - surface.Eval(x)
		// dF/dt = R_row3.p - g'(x)*R_row1.p
		fp := row3p - surface.Deriv(x)*row1p
		if fp == 0 {
			break
		}
		delta = fn / fp
		t -= delta
		if math.Abs(delta) < Tolerance {
			break
		}
	}
	if iter == MaxIterations && math.Abs(delta) >= Tolerance {
		return 0, camera.FocalPoint3D{}, &NonConvergenceError{
			Point:      geometry.Point2D{X: focal.X, Y: focal.Y},
			Iterations: iter,
			LastDelta:  delta,
		}
	}

	tp := camera.FocalPoint3D{X: t * p.X, Y: t * p.Y, Z: t * p.Z}
	rtp := r.Apply(tp)
	q := camera.FocalPoint3D{X: rtp.X - rOf.X, Y: rtp.Y - rOf.Y, Z: rtp.Z - rOf.Z}
	return t, q, nil
}

// IntersectAll solves the ray/surface intersection for a batch of focal
// points, collecting the first non-convergence error encountered (if any)
// while still returning as many solved points as possible.
func IntersectAll(focals []camera.FocalPoint3D, r camera.Rotation, surface geometry.PolyCurve) ([]camera.FocalPoint3D, error) {
	out := make([]camera.FocalPoint3D, len(focals))
	var firstErr error
	for i, f := range focals {
		p, err := Intersect(f, r, surface)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		out[i] = p
	}
	return out, firstErr
}
