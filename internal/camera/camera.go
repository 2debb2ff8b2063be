// Package camera implements the pinhole projection and cylindrical-surface
// model the rectifier reasons about: mapping between image-plane pixels,
// the camera's focal plane, and the rotated world (GCS) frame in which the
// page surface is expressed as z = g(x).
package camera

import (
	"math"

	"pagedewarp/pkg/geometry"
)

// DefaultFocalLength is f in pixel units (spec §6 default).
const DefaultFocalLength = 3270.5

// FocalPoint3D is a 3-D point in camera or world coordinates.
type FocalPoint3D struct {
	X, Y, Z float64
}

// Of returns the focal-plane origin offset (0, 0, f) used throughout the
// ray/surface math (spec §3: "focal plane at z = -f").
func Of(f float64) FocalPoint3D { return FocalPoint3D{X: 0, Y: 0, Z: f} }

// ImageToFocalPlane maps an image-plane point (u, v) to its corresponding
// point on the focal plane z = -f, relative to principal point O.
func ImageToFocalPlane(p geometry.Point2D, o geometry.Point2D, f float64) FocalPoint3D {
	return FocalPoint3D{X: p.X - o.X, Y: p.Y - o.Y, Z: -f}
}

// ImageToFocalPlaneAll maps a batch of image points.
func ImageToFocalPlaneAll(pts []geometry.Point2D, o geometry.Point2D, f float64) []FocalPoint3D {
	out := make([]FocalPoint3D, len(pts))
	for i, p := range pts {
		out[i] = ImageToFocalPlane(p, o, f)
	}
	return out
}

// ProjectToImage projects a 3-D camera-frame point through the pinhole onto
// the image plane (dividing by z/-f and re-adding the principal point).
func ProjectToImage(p FocalPoint3D, o geometry.Point2D, f float64) geometry.Point2D {
	scale := -f / p.Z
	return geometry.Point2D{X: p.X*scale + o.X, Y: p.Y*scale + o.Y}
}

// Rotation is a 3x3 rotation matrix, row-major.
type Rotation [3][3]float64

// Apply rotates a point by R.
func (r Rotation) Apply(p FocalPoint3D) FocalPoint3D {
	return FocalPoint3D{
		X: r[0][0]*p.X + r[0][1]*p.Y + r[0][2]*p.Z,
		Y: r[1][0]*p.X + r[1][1]*p.Y + r[1][2]*p.Z,
		Z: r[2][0]*p.X + r[2][1]*p.Y + r[2][2]*p.Z,
	}
}

// ApplyInverse applies R^-1 = R^T (rotations are orthonormal).
func (r Rotation) ApplyInverse(p FocalPoint3D) FocalPoint3D {
	return FocalPoint3D{
		X: r[0][0]*p.X + r[1][0]*p.Y + r[2][0]*p.Z,
		Y: r[0][1]*p.X + r[1][1]*p.Y + r[2][1]*p.Z,
		Z: r[0][2]*p.X + r[1][2]*p.Y + r[2][2]*p.Z,
	}
}

// Row1, Row2, Row3 expose rows as dot-product helpers against a point, used
// throughout the Jacobian (spec: "R_row1.p", "R_row3.p", ...).
func (r Rotation) Row1(p FocalPoint3D) float64 { return r[0][0]*p.X + r[0][1]*p.Y + r[0][2]*p.Z }
func (r Rotation) Row2(p FocalPoint3D) float64 { return r[1][0]*p.X + r[1][1]*p.Y + r[1][2]*p.Z }
func (r Rotation) Row3(p FocalPoint3D) float64 { return r[2][0]*p.X + r[2][1]*p.Y + r[2][2]*p.Z }

// RTheta computes the Rodrigues rotation matrix for rotating by angle
// ||theta|| around axis theta/||theta||. It degrades gracefully (returns
// the identity) as ||theta|| -> 0, handling the small-angle case the way
// spec §4.2 requires ("must handle small ||theta|| robustly").
func RTheta(theta [3]float64) Rotation {
	t := math.Sqrt(theta[0]*theta[0] + theta[1]*theta[1] + theta[2]*theta[2])
	if t < 1e-12 {
		return Rotation{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	}
	t1, t2, t3 := theta[0]/t, theta[1]/t, theta[2]/t
	c, s := math.Cos(t/2), math.Sin(t/2)
	ss := s * s
	cs := c * s

	return Rotation{
		{2*(t1*t1-1)*ss + 1, 2*t1*t2*ss - 2*t3*cs, 2*t1*t3*ss + 2*t2*cs},
		{2*t1*t2*ss + 2*t3*cs, 2*(t2*t2-1)*ss + 1, 2*t2*t3*ss - 2*t1*cs},
		{2*t1*t3*ss - 2*t2*cs, 2*t2*t3*ss + 2*t1*cs, 2*(t3*t3-1)*ss + 1},
	}
}

// DRTheta returns dR/dtheta_i for i=0,1,2, via a central finite difference on
// RTheta with a step scaled to ||theta|| (the original's dR_dthetai/
// dR_dtheta: the quaternion-style Rodrigues formula has no simpler closed
// form worth hand-deriving for a 3x3 matrix). Every Jacobian term built from
// this derivative downstream (dt/dtheta, the residual's theta-partials) is
// still fully analytic; only this narrow piece is numeric.
func DRTheta(theta [3]float64) [3]Rotation {
	t := math.Sqrt(theta[0]*theta[0] + theta[1]*theta[1] + theta[2]*theta[2])
	inc := t / 4096
	if inc < 1e-9 {
		inc = 1e-9
	}
	var out [3]Rotation
	for i := 0; i < 3; i++ {
		plus, minus := theta, theta
		plus[i] += inc
		minus[i] -= inc
		rp, rm := RTheta(plus), RTheta(minus)
		var d Rotation
		for a := 0; a < 3; a++ {
			for b := 0; b < 3; b++ {
				d[a][b] = (rp[a][b] - rm[a][b]) / (2 * inc)
			}
		}
		out[i] = d
	}
	return out
}

// GCSToImage maps a world-frame (GCS) point back to image coordinates:
// invert R, add the focal offset Of, and project through the pinhole.
func GCSToImage(p FocalPoint3D, o geometry.Point2D, r Rotation, f float64) geometry.Point2D {
	cam := r.ApplyInverse(p)
	of := Of(f)
	cam.X += of.X
	cam.Y += of.Y
	cam.Z += of.Z
	return ProjectToImage(cam, o, f)
}
