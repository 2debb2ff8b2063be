// Package ransac provides a generic RANSAC driver over a small capability
// pair (Estimator/Residuals) rather than a class hierarchy, replacing the
// original's inheritance-based PolyModel5/LinearXModel pair (spec Design
// Notes §9: "Inherited RANSAC models" should become composition). The loop
// structure itself is grounded on the teacher's
// internal/alignment/transform.go ComputeAffineRANSAC: random minimal-sample
// draw, inlier count by residual threshold, refit on the inlier set.
package ransac

import (
	"math/rand"
)

// Model is anything that can be fit from a minimal sample of data points
// and can score how well it fits the full point set. Sample is the data
// type (e.g. a geometry.Point2D); Fitted is the fitted model (e.g. a
// geometry.PolyCurve or geometry.Line2D).
type Model[Sample any, Fitted any] interface {
	// Estimate fits a model from the given points: Fit calls it with a
	// minimal random sample (Options.MinSamples points) and again with the
	// full inlier set of the best candidate.
	Estimate(points []Sample) (Fitted, bool)
	// Residuals returns, for each point in points (in the same order), the
	// fitted model's absolute residual for that point.
	Residuals(fitted Fitted, points []Sample) []float64
}

// Options configures the RANSAC search.
type Options struct {
	MinSamples     int     // minimal sample size the model needs to fit
	Iterations     int     // number of random trials
	InlierThresh   float64 // residual below which a point counts as inlier
	MinInliers     int     // minimum inlier count to accept a candidate model
	Rand           *rand.Rand
}

// DefaultOptions returns typical settings for a degree-5 polynomial or
// linear baseline fit, matching the original's RANSAC tuning (500 trials,
// generous inlier fraction) with a fixed, reproducible seed.
func DefaultOptions(minSamples int) Options {
	return NewOptions(minSamples, 500, 3.0, 0)
}

// NewOptions builds RANSAC options with an explicit seed, so callers
// upstream (e.g. rectify.Options.RansacSeed) can make fits reproducible
// across runs rather than being stuck with the package default (spec §5:
// "RANSAC seeds must be configurable to make tests reproducible").
func NewOptions(minSamples, iterations int, inlierThresh float64, seed int64) Options {
	return Options{
		MinSamples:   minSamples,
		Iterations:   iterations,
		InlierThresh: inlierThresh,
		MinInliers:   minSamples + 1,
		Rand:         rand.New(rand.NewSource(seed)),
	}
}

// Result holds the winning model and the indices (into the original points
// slice) of the points it was accepted on.
type Result[Fitted any] struct {
	Fitted  Fitted
	Inliers []int
	Score   int
}

// Fit runs RANSAC for a generic Model over the given points, returning the
// best-scoring model refit on its full inlier set. ok is false if no
// candidate ever reached opts.MinInliers.
func Fit[Sample any, Fitted any](model Model[Sample, Fitted], points []Sample, opts Options) (Result[Fitted], bool) {
	n := len(points)
	var best Result[Fitted]
	var bestOK bool
	if n < opts.MinSamples {
		return best, false
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(0))
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sample := make([]Sample, opts.MinSamples)

	for iter := 0; iter < opts.Iterations; iter++ {
		rng.Shuffle(n, func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		for k := 0; k < opts.MinSamples; k++ {
			sample[k] = points[idx[k]]
		}
		fitted, ok := model.Estimate(sample)
		if !ok {
			continue
		}
		residuals := model.Residuals(fitted, points)
		var inliers []int
		for i, r := range residuals {
			if r <= opts.InlierThresh {
				inliers = append(inliers, i)
			}
		}
		if len(inliers) < opts.MinInliers {
			continue
		}
		if len(inliers) <= best.Score {
			continue
		}
		// Refit on the full inlier set for a more stable final model.
		inlierPoints := make([]Sample, len(inliers))
		for i, ix := range inliers {
			inlierPoints[i] = points[ix]
		}
		refit, ok := refitOrKeep(model, fitted, inlierPoints)
		if !ok {
			refit = fitted
		}
		best = Result[Fitted]{Fitted: refit, Inliers: inliers, Score: len(inliers)}
		bestOK = true
	}
	return best, bestOK
}

// refitOrKeep attempts a refit on the larger inlier set; models whose
// Estimate requires exactly MinSamples points (rather than an overdetermined
// least-squares fit) will simply reject the larger sample via ok==false,
// and the original minimal-sample fit is kept.
func refitOrKeep[Sample any, Fitted any](model Model[Sample, Fitted], fallback Fitted, points []Sample) (Fitted, bool) {
	return model.Estimate(points)
}
