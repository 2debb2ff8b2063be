// Package split detects two-page book spreads and divides them into
// single-page crops (SPEC_FULL §12 "page splitting"; ported from batch.py's
// Crop/split_crops).
package split

import "pagedewarp/pkg/geometry"

// Crop is an axis-aligned page region, reusing geometry.Box's convention.
type Crop = geometry.Box

// SplitSpread finds the widest vertical gap between glyph column occupancy
// and, if it is wide enough relative to the page, splits full into two
// page crops left/right of the gap (ported from batch.py's split_crops:
// "greedy max-gap two-page split").
func SplitSpread(full geometry.Box, columnOccupancy []bool, minGapFrac float64) []Crop {
	n := len(columnOccupancy)
	if n == 0 {
		return []Crop{full}
	}

	bestStart, bestLen := -1, 0
	curStart, curLen := -1, 0
	for i, occupied := range columnOccupancy {
		if occupied {
			curStart, curLen = -1, 0
			continue
		}
		if curStart == -1 {
			curStart = i
		}
		curLen++
		if curLen > bestLen {
			bestStart, bestLen = curStart, curLen
		}
	}

	if bestStart < 0 || float64(bestLen)/float64(n) < minGapFrac {
		return []Crop{full}
	}

	width := full.W()
	gapMidFrac := (float64(bestStart) + float64(bestLen)/2) / float64(n)
	splitX := full.X0 + width*gapMidFrac

	left := geometry.Box{X0: full.X0, Y0: full.Y0, X1: splitX, Y1: full.Y1}
	right := geometry.Box{X0: splitX, Y0: full.Y0, X1: full.X1, Y1: full.Y1}
	return []Crop{left, right}
}
