package geometry

import "math"

// ArcLengthResample takes a sampled polyline (xs, ys) and resamples it at n
// equally spaced positions along its cumulative arc length, via linear
// interpolation between the original samples. It returns the resampled
// coordinates and the total arc length.
func ArcLengthResample(xs, ys []float64, n int) (rxs, rys []float64, totalArc float64) {
	m := len(xs)
	if m == 0 || m != len(ys) {
		return nil, nil, 0
	}
	cum := make([]float64, m)
	for i := 1; i < m; i++ {
		dx, dy := xs[i]-xs[i-1], ys[i]-ys[i-1]
		cum[i] = cum[i-1] + math.Hypot(dx, dy)
	}
	totalArc = cum[m-1]

	rxs = make([]float64, n)
	rys = make([]float64, n)
	if n == 1 {
		rxs[0], rys[0] = xs[0], ys[0]
		return rxs, rys, totalArc
	}

	j := 0
	for i := 0; i < n; i++ {
		target := totalArc * float64(i) / float64(n-1)
		for j < m-2 && cum[j+1] < target {
			j++
		}
		seg := cum[j+1] - cum[j]
		var t float64
		if seg > 0 {
			t = (target - cum[j]) / seg
		}
		rxs[i] = xs[j] + t*(xs[j+1]-xs[j])
		rys[i] = ys[j] + t*(ys[j+1]-ys[j])
	}
	return rxs, rys, totalArc
}
