package backtest

import (
	"math"

	"github.com/newthinker/sigma/internal/core"
)

// BuildReturns derives the per-bar return decomposition from prices,
// positions and a flat per-trade cost. The effective position applied
// to bar i is the previous bar's position scaled by its size, so a
// signal can never earn the return of the bar it was generated on.
// The first bar has no defined period return; its sample is all zeros.
func BuildReturns(bars []core.OHLCV, positions []core.PositionSample, cost float64) []ReturnPoint {
	points := make([]ReturnPoint, len(bars))
	for i := range bars {
		points[i].Time = bars[i].Time
		if i == 0 {
			continue
		}

		points[i].PeriodReturn = bars[i].Close/bars[i-1].Close - 1
		points[i].EffectivePosition = float64(positions[i-1].Position) * positions[i-1].EffectiveSize()
		points[i].StrategyReturn = points[i].EffectivePosition * points[i].PeriodReturn

		change := math.Abs(float64(positions[i].Position - positions[i-1].Position))
		points[i].TradeCost = change * cost
		points[i].NetReturn = points[i].StrategyReturn - points[i].TradeCost
	}
	return points
}

// EquityCurve compounds net returns into an equity curve starting at
// 1.0. The first slot is pinned to 1.0 regardless of input.
func EquityCurve(points []ReturnPoint) []float64 {
	equity := make([]float64, len(points))
	value := 1.0
	for i, p := range points {
		if i == 0 {
			equity[0] = 1.0
			continue
		}
		value *= 1 + p.NetReturn
		equity[i] = value
	}
	return equity
}

// DrawdownCurve computes the fractional decline from the running peak
// over a contiguous equity slice. The peak starts fresh at the first
// element, so callers can apply it to the full curve or to any
// sub-period (e.g. one calendar year). Values are always <= 0.
func DrawdownCurve(equity []float64) []float64 {
	drawdown := make([]float64, len(equity))
	peak := math.Inf(-1)
	for i, v := range equity {
		if v > peak {
			peak = v
		}
		drawdown[i] = (v - peak) / peak
	}
	return drawdown
}

// minOf returns the smallest element, or 0 for an empty slice.
func minOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}
