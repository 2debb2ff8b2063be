package geometry

// PolyCurve is a polynomial of fixed degree D with its constant term
// pinned to 0: g(X) = a[0]*X + a[1]*X^2 + ... + a[D-1]*X^D. It is used both
// for per-line baseline models (degree 5) and for the page's cylindrical
// surface cross-section (degree D, default 7; spec: "a0 forced to 0...
// pins the surface at X=0").
type PolyCurve struct {
	// Coeffs holds a[0]..a[D-1], the coefficients of X^1..X^D. The
	// pinned a0 term is implicit and never stored.
	Coeffs []float64
}

// NewPolyCurve returns a PolyCurve with the given non-constant coefficients.
func NewPolyCurve(coeffs []float64) PolyCurve {
	c := make([]float64, len(coeffs))
	copy(c, coeffs)
	return PolyCurve{Coeffs: c}
}

// ZeroPolyCurve returns the flat (identically zero) curve of degree d.
func ZeroPolyCurve(d int) PolyCurve {
	return PolyCurve{Coeffs: make([]float64, d)}
}

// Degree returns D.
func (g PolyCurve) Degree() int { return len(g.Coeffs) }

// Eval evaluates g(x).
func (g PolyCurve) Eval(x float64) float64 {
	var sum, pow float64
	pow = x
	for _, c := range g.Coeffs {
		sum += c * pow
		pow *= x
	}
	return sum
}

// EvalAll evaluates g at every point in xs.
func (g PolyCurve) EvalAll(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = g.Eval(x)
	}
	return out
}

// Deriv evaluates g'(x).
func (g PolyCurve) Deriv(x float64) float64 {
	var sum, pow float64
	pow = 1
	for k, c := range g.Coeffs {
		sum += float64(k+1) * c * pow
		pow *= x
	}
	return sum
}

// Power returns x^(k+1), i.e. the basis function multiplying Coeffs[k]. It
// is used directly by the joint optimizer's analytic Jacobian columns
// (spec §4.6: "powers X^k").
func Power(x float64, k int) float64 {
	p := 1.0
	for i := 0; i <= k; i++ {
		p *= x
	}
	return p
}
