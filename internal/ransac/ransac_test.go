package ransac

import (
	"math"
	"math/rand"
	"testing"
)

// linearModel fits y = m*x + b from its first two points and scores absolute
// vertical residual; used here as a minimal stand-in for PolyModel5 to
// exercise the generic driver without pulling in the baseline package.
type linearModel struct{}

type point struct{ X, Y float64 }

type line struct{ M, B float64 }

func (linearModel) Estimate(pts []point) (line, bool) {
	if len(pts) < 2 {
		return line{}, false
	}
	a, b := pts[0], pts[1]
	if a.X == b.X {
		return line{}, false
	}
	m := (b.Y - a.Y) / (b.X - a.X)
	return line{M: m, B: a.Y - m*a.X}, true
}

func (linearModel) Residuals(fitted line, pts []point) []float64 {
	out := make([]float64, len(pts))
	for i, p := range pts {
		out[i] = math.Abs(p.Y - (fitted.M*p.X + fitted.B))
	}
	return out
}

func TestFitRecoversLineWithOutliers(t *testing.T) {
	var pts []point
	for x := 0; x < 20; x++ {
		pts = append(pts, point{X: float64(x), Y: 2*float64(x) + 1})
	}
	// Outliers far from the line.
	pts = append(pts, point{X: 5, Y: 500}, point{X: 10, Y: -500}, point{X: 15, Y: 300})

	opts := DefaultOptions(2)
	opts.Rand = rand.New(rand.NewSource(1))
	opts.InlierThresh = 0.5

	result, ok := Fit[point, line](linearModel{}, pts, opts)
	if !ok {
		t.Fatal("Fit did not find a model")
	}
	if math.Abs(result.Fitted.M-2) > 0.05 || math.Abs(result.Fitted.B-1) > 0.05 {
		t.Fatalf("fitted line = %+v, want slope~2 intercept~1", result.Fitted)
	}
	if result.Score < 20 {
		t.Fatalf("inlier score = %d, want >= 20", result.Score)
	}
}

func TestFitFailsWithTooFewPoints(t *testing.T) {
	opts := DefaultOptions(2)
	_, ok := Fit[point, line](linearModel{}, []point{{X: 0, Y: 0}}, opts)
	if ok {
		t.Fatal("Fit should fail with fewer points than MinSamples")
	}
}

func TestFitIsDeterministicWithFixedSeed(t *testing.T) {
	var pts []point
	for x := 0; x < 15; x++ {
		pts = append(pts, point{X: float64(x), Y: 3*float64(x) - 2})
	}

	run := func() line {
		opts := DefaultOptions(2)
		opts.Rand = rand.New(rand.NewSource(42))
		result, ok := Fit[point, line](linearModel{}, pts, opts)
		if !ok {
			t.Fatal("Fit did not find a model")
		}
		return result.Fitted
	}

	a := run()
	b := run()
	if a != b {
		t.Fatalf("Fit with fixed seed not deterministic: %+v vs %+v", a, b)
	}
}
