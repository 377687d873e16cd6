package metrics

import (
	"math"
	"sort"
	"strconv"
)

// avgWinQuantiles are the quantiles exported for the avg_win distribution
var avgWinQuantiles = []float64{0, 0.25, 0.5, 0.75, 0.9, 1}

// RecordAvgWinDistribution replaces the exported avg_win quantiles with those
// of scores. Missing (NaN) scores are counted as skipped.
func RecordAvgWinDistribution(scores []float64) {
	values := make([]float64, 0, len(scores))
	skipped := 0
	for _, s := range scores {
		if math.IsNaN(s) {
			skipped++
			continue
		}
		values = append(values, s)
	}
	ScoringSkippedTotal.Add(float64(skipped))

	AvgWinQuantile.Reset()
	if len(values) == 0 {
		return
	}
	sort.Float64s(values)
	for _, q := range avgWinQuantiles {
		AvgWinQuantile.WithLabelValues(strconv.FormatFloat(q, 'f', -1, 64)).Set(Quantile(values, q))
	}
}

// Quantile returns the q-quantile of sorted values with linear interpolation
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
