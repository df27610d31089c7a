package backtest

import (
	"sort"
	"time"
)

// defaultPeriodsPerYear is used when the cadence cannot be inferred.
const defaultPeriodsPerYear = 365

// InferPeriodsPerYear classifies the sampling cadence of a time index
// into an annualization factor. The median of consecutive deltas is
// bucketed: hourly bars or finer annualize to 8760, 4-hour bars to
// 2190, daily to 365, weekly to 52, anything slower to 12.
func InferPeriodsPerYear(times []time.Time) int {
	if len(times) < 2 {
		return defaultPeriodsPerYear
	}

	deltas := make([]time.Duration, 0, len(times)-1)
	for i := 1; i < len(times); i++ {
		deltas = append(deltas, times[i].Sub(times[i-1]))
	}

	hours := medianDuration(deltas).Hours()

	switch {
	case hours <= 1:
		return 8760
	case hours <= 4:
		return 2190
	case hours <= 24:
		return 365
	case hours <= 168:
		return 52
	default:
		return 12
	}
}

// medianDuration returns the median of a non-empty duration slice,
// averaging the two middle values for even lengths.
func medianDuration(ds []time.Duration) time.Duration {
	sorted := make([]time.Duration, len(ds))
	copy(sorted, ds)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
