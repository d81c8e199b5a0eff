package analytics

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// trendCorrelation measures the direction of a trend series as the Pearson
// correlation between the time key and the aggregated value. Needs at least
// three points and non-degenerate variance on both axes.
func trendCorrelation(points []keyedPoint) (float64, bool) {
	if len(points) < 3 {
		return 0, false
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.key
		ys[i] = p.sum
	}

	corr := stat.Correlation(xs, ys, nil)
	if math.IsNaN(corr) || math.IsInf(corr, 0) {
		return 0, false
	}
	return corr, true
}
