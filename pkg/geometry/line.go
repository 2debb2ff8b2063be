package geometry

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Line2D is a 2-D line in implicit form A*x + B*y + C = 0, normalized so
// that A*A+B*B == 1. This representation (rather than a bare y=m*x+b) lets
// the same type describe both near-horizontal baselines and near-vertical
// column/longitude lines without a special case, while still exposing the
// y=m*x+b and x=m*y+b views the rest of the pipeline wants (spec: "Line2D:
// represented as y = m*x + b OR as the pair (point, slope)").
type Line2D struct {
	A, B, C float64
}

func normalizeLine(a, b, c float64) Line2D {
	n := math.Hypot(a, b)
	if n == 0 {
		return Line2D{}
	}
	return Line2D{A: a / n, B: b / n, C: c / n}
}

// LineFromSlopeIntercept builds y = m*x + b.
func LineFromSlopeIntercept(m, b float64) Line2D {
	return normalizeLine(-m, 1, -b)
}

// LineFromXSlopeIntercept builds x = m*y + b, the vertical-tolerant form
// used to fit the left/right text-column edges.
func LineFromXSlopeIntercept(m, b float64) Line2D {
	return normalizeLine(1, -m, -b)
}

// LineFromPoints builds the line through two distinct points.
func LineFromPoints(p1, p2 Point2D) Line2D {
	dx, dy := p2.X-p1.X, p2.Y-p1.Y
	// A*x + B*y + C = 0 with normal (dy, -dx)
	a, b := dy, -dx
	c := -(a*p1.X + b*p1.Y)
	return normalizeLine(a, b, c)
}

// LineFromPointSlope builds y - p.Y = m*(x - p.X).
func LineFromPointSlope(p Point2D, m float64) Line2D {
	return LineFromSlopeIntercept(m, p.Y-m*p.X)
}

// Slope returns dy/dx; ok is false for a vertical line (B==0).
func (l Line2D) Slope() (float64, bool) {
	if l.B == 0 {
		return 0, false
	}
	return -l.A / l.B, true
}

// YAt evaluates y at a given x; ok is false if the line is vertical.
func (l Line2D) YAt(x float64) (float64, bool) {
	if l.B == 0 {
		return 0, false
	}
	return -(l.A*x + l.C) / l.B, true
}

// XAt evaluates x at a given y; ok is false if the line is horizontal.
func (l Line2D) XAt(y float64) (float64, bool) {
	if l.A == 0 {
		return 0, false
	}
	return -(l.B*y + l.C) / l.A, true
}

// XForm returns the x = m*y + b coefficients; ok is false if A==0.
func (l Line2D) XForm() (m, b float64, ok bool) {
	if l.A == 0 {
		return 0, 0, false
	}
	return -l.B / l.A, -l.C / l.A, true
}

// Intersect finds the point where two lines cross.
func (l Line2D) Intersect(o Line2D) (Point2D, bool) {
	det := l.A*o.B - o.A*l.B
	if math.Abs(det) < 1e-12 {
		return Point2D{}, false
	}
	x := (-l.C*o.B + o.C*l.B) / det
	y := (-l.A*o.C + o.A*l.C) / det
	return Point2D{X: x, Y: y}, true
}

// Altitude returns the line through p perpendicular to l.
func (l Line2D) Altitude(p Point2D) Line2D {
	// l's normal (A,B) is the altitude's direction.
	return LineFromPoints(p, Point2D{X: p.X + l.A, Y: p.Y + l.B})
}

// Offset translates the line's coordinate frame by -o (spec: "offset
// (translate by -O)"), e.g. to move from image coordinates to coordinates
// centered at the principal point O.
func (l Line2D) Offset(o Point2D) Line2D {
	return Line2D{A: l.A, B: l.B, C: l.A*o.X + l.B*o.Y + l.C}
}

// Distance returns the perpendicular distance from p to the line.
func (l Line2D) Distance(p Point2D) float64 {
	return math.Abs(l.A*p.X + l.B*p.Y + l.C)
}

// BestIntersection finds the point minimizing the sum of squared
// perpendicular distances to a set of (typically near-concurrent) lines,
// via the 2x2 normal-equations least-squares solve (mirrors the small dense
// solves `internal/alignment/transform.go` in the teacher does with
// gonum/mat for affine fits).
func BestIntersection(lines []Line2D) (Point2D, bool) {
	if len(lines) == 0 {
		return Point2D{}, false
	}
	ata := mat.NewDense(2, 2, nil)
	atb := mat.NewVecDense(2, nil)
	for _, l := range lines {
		ata.Set(0, 0, ata.At(0, 0)+l.A*l.A)
		ata.Set(0, 1, ata.At(0, 1)+l.A*l.B)
		ata.Set(1, 0, ata.At(1, 0)+l.A*l.B)
		ata.Set(1, 1, ata.At(1, 1)+l.B*l.B)
		atb.SetVec(0, atb.AtVec(0)-l.A*l.C)
		atb.SetVec(1, atb.AtVec(1)-l.B*l.C)
	}
	var sol mat.VecDense
	if err := sol.SolveVec(ata, atb); err != nil {
		return Point2D{}, false
	}
	return Point2D{X: sol.AtVec(0), Y: sol.AtVec(1)}, true
}

// FitLine fits a line to a set of points by total least squares
// (orthogonal regression: the line through the centroid along the
// dominant eigenvector of the point scatter), which unlike ordinary
// least-squares-in-y handles near-vertical point sets correctly.
func FitLine(points []Point2D) (Line2D, bool) {
	if len(points) < 2 {
		return Line2D{}, false
	}
	c := Centroid(points)
	var sxx, sxy, syy float64
	for _, p := range points {
		dx, dy := p.X-c.X, p.Y-c.Y
		sxx += dx * dx
		sxy += dx * dy
		syy += dy * dy
	}
	// Eigenvector of [[sxx,sxy],[sxy,syy]] for the larger eigenvalue gives
	// the direction of greatest scatter; the line's normal is orthogonal
	// to it.
	trace := sxx + syy
	diff := sxx - syy
	disc := math.Sqrt(diff*diff + 4*sxy*sxy)
	lambda := (trace + disc) / 2

	var dirX, dirY float64
	if sxy != 0 {
		dirX, dirY = sxy, lambda-sxx
	} else if sxx >= syy {
		dirX, dirY = 1, 0
	} else {
		dirX, dirY = 0, 1
	}
	norm := math.Hypot(dirX, dirY)
	if norm == 0 {
		return Line2D{}, false
	}
	dirX, dirY = dirX/norm, dirY/norm
	// Normal is perpendicular to the direction.
	a, b := -dirY, dirX
	cc := -(a*c.X + b*c.Y)
	return normalizeLine(a, b, cc), true
}

// IntersectPoly finds the x nearest seedX at which the line meets the
// curve (y = curve.Eval(x)), via Newton iteration on f(x) = lineY(x) -
// curve.Eval(x). Used to intersect a longitude line with a fitted text
// baseline polynomial.
func (l Line2D) IntersectPoly(curve PolyCurve, seedX float64) (Point2D, bool) {
	m, ok := l.Slope()
	if !ok {
		return Point2D{}, false
	}
	lb, _ := l.YAt(0)
	x := seedX
	for i := 0; i < 20; i++ {
		f := (m*x + lb) - curve.Eval(x)
		fp := m - curve.Deriv(x)
		if fp == 0 {
			break
		}
		dx := f / fp
		x -= dx
		if math.Abs(dx) < 1e-9 {
			break
		}
	}
	y, _ := l.YAt(x)
	return Point2D{X: x, Y: y}, true
}
