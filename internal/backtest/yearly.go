package backtest

// CalculateYearlyStats re-applies the return, Sharpe and drawdown
// computations independently per calendar year. Each year's drawdown
// peak starts fresh at its own first equity value, and a year with a
// single return observation has Sharpe 0.
func CalculateYearlyStats(points []ReturnPoint, equity []float64, periodsPerYear int) map[int]YearlyStat {
	yearly := make(map[int]YearlyStat)
	if len(points) == 0 {
		return yearly
	}

	// Timestamps are strictly increasing, so each year occupies one
	// contiguous index range [start, end).
	start := 0
	for i := 1; i <= len(points); i++ {
		if i < len(points) && points[i].Time.Year() == points[start].Time.Year() {
			continue
		}

		year := points[start].Time.Year()
		yearEquity := equity[start:i]

		// The first bar of the whole series has no defined return, so
		// it is excluded from the first year's observations.
		obsStart := start
		if obsStart == 0 {
			obsStart = 1
		}
		obs := make([]float64, 0, i-obsStart)
		for j := obsStart; j < i; j++ {
			obs = append(obs, points[j].NetReturn)
		}

		yearly[year] = YearlyStat{
			Year:        year,
			Return:      yearEquity[len(yearEquity)-1]/yearEquity[0] - 1,
			Sharpe:      sharpeRatio(obs, periodsPerYear),
			MaxDrawdown: minOf(DrawdownCurve(yearEquity)),
		}

		start = i
	}

	return yearly
}
