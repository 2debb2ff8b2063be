// Package lm implements a Levenberg-Marquardt nonlinear least-squares
// solver on top of gonum/mat's small dense linear algebra. Gonum's
// optimize package has no built-in LM-with-analytic-Jacobian method (only
// scalar-cost minimizers such as BFGS/NelderMead paired with
// finite-difference gradients), so the solver is hand-written directly
// against mat.Dense/mat.VecDense, the same low-level linear-algebra layer
// the teacher uses for its affine-fit solves
// (internal/alignment/transform.go: computeAffineFromPoints,
// computeAffineLeastSquares).
package lm

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Func evaluates the residual vector r(params) for the current parameter
// vector. Its length need not match len(params).
type Func func(params []float64) []float64

// JacobianFunc evaluates the analytic Jacobian d(r_i)/d(params_j) at the
// current parameter vector, as a (len(residuals) x len(params)) matrix.
type JacobianFunc func(params []float64) *mat.Dense

// Options configures the solver.
type Options struct {
	MaxIterations int
	Tolerance     float64 // stop when the relative cost change drops below this
	InitialLambda float64
	LambdaUp      float64
	LambdaDown    float64
}

// DefaultOptions returns standard LM damping schedule parameters.
func DefaultOptions() Options {
	return Options{
		MaxIterations: 100,
		Tolerance:     1e-10,
		InitialLambda: 1e-3,
		LambdaUp:      10,
		LambdaDown:    10,
	}
}

// NonConvergenceError reports that the optimizer exhausted its iteration
// budget without meeting the tolerance (spec §7: typed error for solver
// non-convergence).
type NonConvergenceError struct {
	Iterations int
	FinalCost  float64
}

func (e *NonConvergenceError) Error() string {
	return fmt.Sprintf("lm: did not converge after %d iterations (final cost %g)", e.Iterations, e.FinalCost)
}

// Result holds the solved parameter vector and diagnostics.
type Result struct {
	Params     []float64
	Cost       float64
	Iterations int
}

// Solve minimizes sum(r(params)^2) starting from params0, using analytic
// Jacobians from jacFn. It mutates neither params0 nor the caller's slices.
func Solve(fn Func, jacFn JacobianFunc, params0 []float64, opts Options) (Result, error) {
	n := len(params0)
	params := append([]float64{}, params0...)

	residuals := fn(params)
	cost := sumSquares(residuals)
	lambda := opts.InitialLambda

	var iter int
	var converged bool
	for iter = 0; iter < opts.MaxIterations; iter++ {
		j := jacFn(params)
		jr, _ := j.Dims()

		jt := &mat.Dense{}
		jt.CloneFrom(j.T())

		jtj := mat.NewDense(n, n, nil)
		jtj.Mul(jt, j)

		r := mat.NewVecDense(jr, residuals)
		jtr := mat.NewVecDense(n, nil)
		jtr.MulVec(jt, r)
		// Gauss-Newton normal equations solve for the step minimizing
		// ||r + J*step||^2, i.e. (J^T J) step = -(J^T r).
		jtr.ScaleVec(-1, jtr)

		var step mat.VecDense
		var accepted bool
		prevCost := cost
		for tries := 0; tries < 20; tries++ {
			damped := mat.NewDense(n, n, nil)
			damped.Copy(jtj)
			for k := 0; k < n; k++ {
				damped.Set(k, k, damped.At(k, k)*(1+lambda))
			}

			if err := step.SolveVec(damped, jtr); err != nil {
				lambda *= opts.LambdaUp
				continue
			}

			candidate := make([]float64, n)
			for k := 0; k < n; k++ {
				candidate[k] = params[k] + step.AtVec(k)
			}
			candResiduals := fn(candidate)
			candCost := sumSquares(candResiduals)

			if candCost < cost {
				params = candidate
				residuals = candResiduals
				cost = candCost
				lambda /= opts.LambdaDown
				accepted = true
				break
			}
			lambda *= opts.LambdaUp
		}

		if !accepted {
			// No damping level produced an improving step: the search has
			// settled at a local minimum (or a saddle the trust region
			// can't escape), which counts as convergence rather than
			// failure.
			converged = true
			break
		}
		if relativeCostDrop(cost, prevCost) < opts.Tolerance {
			converged = true
			break
		}
	}

	result := Result{Params: params, Cost: cost, Iterations: iter}
	if !converged {
		return result, &NonConvergenceError{Iterations: iter, FinalCost: cost}
	}
	return result, nil
}

func sumSquares(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x * x
	}
	return s
}

func relativeCostDrop(newCost, oldCost float64) float64 {
	if oldCost == 0 {
		return 0
	}
	d := oldCost - newCost
	if d < 0 {
		d = -d
	}
	return d / oldCost
}
