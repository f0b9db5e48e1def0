package ledger

import (
	"math"

	"padaria/internal/constants"
)

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// populationStdDev is the population (not sample) standard deviation.
func populationStdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	var sumSq float64
	for _, v := range values {
		sumSq += (v - m) * (v - m)
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

// trendLabel compares a recent mean against an earlier baseline with a ±10%
// stability band. A zero baseline cannot express a ratio: any recent activity
// then counts as increasing.
func trendLabel(recentMean, earlierMean float64) string {
	if earlierMean == 0 {
		if recentMean > 0 {
			return constants.TREND_INCREASING
		}
		return constants.TREND_STABLE
	}
	switch {
	case recentMean > earlierMean*(1+constants.TREND_STABLE_BAND):
		return constants.TREND_INCREASING
	case recentMean < earlierMean*(1-constants.TREND_STABLE_BAND):
		return constants.TREND_DECREASING
	default:
		return constants.TREND_STABLE
	}
}

// roundPercent converts a sold/loaded ratio into a whole percentage.
func roundPercent(numerator, denominator int) int {
	if denominator == 0 {
		return 0
	}
	return int(math.Round(float64(numerator) / float64(denominator) * 100))
}
