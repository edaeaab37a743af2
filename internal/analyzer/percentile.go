// Package analyzer implements the capacity/cost/efficiency analysis engine:
// percentile-based throughput estimation, efficiency ratios, slack
// aggregation, and the deterministic rule set producing typed
// recommendations. Everything here is a pure computation over a supplied
// snapshot; the Engine in assembler.go is the only part that talks to
// collaborators.
package analyzer

import (
	"math"
	"sort"
)

// Percentile returns the p-th percentile (p in [0,100]) of values using
// linear interpolation between order statistics. The input need not be
// sorted. An empty input returns 0, a documented sentinel rather than an
// error.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	r := float64(len(sorted)-1) * (p / 100)
	lo := math.Floor(r)
	hi := math.Ceil(r)
	if lo == hi {
		return sorted[int(r)]
	}
	return sorted[int(lo)] + (r-lo)*(sorted[int(hi)]-sorted[int(lo)])
}
