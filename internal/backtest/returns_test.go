package backtest

import (
	"math"
	"testing"
	"time"

	"github.com/newthinker/sigma/internal/core"
)

func dailyBars(closes ...float64) []core.OHLCV {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]core.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = core.OHLCV{Symbol: "BTCUSDT", Close: c, Time: base.AddDate(0, 0, i)}
	}
	return bars
}

func dailyPositions(bars []core.OHLCV, positions ...int) []core.PositionSample {
	samples := make([]core.PositionSample, len(positions))
	for i, p := range positions {
		samples[i] = core.PositionSample{Time: bars[i].Time, Position: p, Size: 1.0}
	}
	return samples
}

func approx(t *testing.T, got, want, tol float64, label string) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s = %v, want %v", label, got, want)
	}
}

func TestBuildReturns_LagsPositionByOneBar(t *testing.T) {
	bars := dailyBars(100, 110, 99, 99)
	positions := dailyPositions(bars, 0, 1, 1, 0)

	points := BuildReturns(bars, positions, 0)

	// Bar 1: position just turned on, not effective yet.
	approx(t, points[1].EffectivePosition, 0, 1e-12, "EffectivePosition[1]")
	approx(t, points[1].NetReturn, 0, 1e-12, "NetReturn[1]")

	// Bar 2: previous bar's long position earns this bar's return.
	approx(t, points[2].EffectivePosition, 1, 1e-12, "EffectivePosition[2]")
	approx(t, points[2].PeriodReturn, 99.0/110.0-1, 1e-12, "PeriodReturn[2]")
	approx(t, points[2].NetReturn, 99.0/110.0-1, 1e-12, "NetReturn[2]")

	// Bar 3: still effective (position closed this bar, lag applies).
	approx(t, points[3].EffectivePosition, 1, 1e-12, "EffectivePosition[3]")
	approx(t, points[3].NetReturn, 0, 1e-12, "NetReturn[3]")
}

func TestBuildReturns_FirstSampleIsZero(t *testing.T) {
	bars := dailyBars(100, 110)
	positions := dailyPositions(bars, 1, 1)

	points := BuildReturns(bars, positions, 0.01)

	p := points[0]
	if p.PeriodReturn != 0 || p.EffectivePosition != 0 || p.StrategyReturn != 0 || p.TradeCost != 0 || p.NetReturn != 0 {
		t.Errorf("first sample should be all zeros, got %+v", p)
	}
}

func TestBuildReturns_PositionSizeScalesReturn(t *testing.T) {
	bars := dailyBars(100, 110, 121)
	positions := []core.PositionSample{
		{Time: bars[0].Time, Position: 1, Size: 0.5},
		{Time: bars[1].Time, Position: 1, Size: 0.5},
		{Time: bars[2].Time, Position: 1, Size: 0.5},
	}

	points := BuildReturns(bars, positions, 0)
	approx(t, points[1].NetReturn, 0.05, 1e-12, "NetReturn[1]")
	approx(t, points[2].NetReturn, 0.05, 1e-12, "NetReturn[2]")
}

func TestBuildReturns_UnsetSizeDefaultsToFull(t *testing.T) {
	bars := dailyBars(100, 110)
	positions := []core.PositionSample{
		{Time: bars[0].Time, Position: 1}, // Size 0 = unset
		{Time: bars[1].Time, Position: 1},
	}

	points := BuildReturns(bars, positions, 0)
	approx(t, points[1].NetReturn, 0.10, 1e-12, "NetReturn[1]")
}

func TestBuildReturns_CostChargedOnPositionChange(t *testing.T) {
	bars := dailyBars(100, 100, 100, 100)
	positions := dailyPositions(bars, 0, 1, -1, 0)
	cost := 0.001

	points := BuildReturns(bars, positions, cost)

	approx(t, points[1].TradeCost, cost, 1e-12, "TradeCost[1]")   // 0 -> 1
	approx(t, points[2].TradeCost, 2*cost, 1e-12, "TradeCost[2]") // 1 -> -1 flips two units
	approx(t, points[3].TradeCost, cost, 1e-12, "TradeCost[3]")   // -1 -> 0
	approx(t, points[2].NetReturn, -2*cost, 1e-12, "NetReturn[2]")
}

func TestEquityCurve_StartsAtOne(t *testing.T) {
	bars := dailyBars(100, 90, 80)
	positions := dailyPositions(bars, 1, 1, 1)

	equity := EquityCurve(BuildReturns(bars, positions, 0.01))

	if equity[0] != 1.0 {
		t.Errorf("equity[0] = %v, want exactly 1.0", equity[0])
	}
}

func TestEquityCurve_Compounds(t *testing.T) {
	bars := dailyBars(100, 110, 121)
	positions := dailyPositions(bars, 1, 1, 1)

	equity := EquityCurve(BuildReturns(bars, positions, 0))

	approx(t, equity[1], 1.10, 1e-12, "equity[1]")
	approx(t, equity[2], 1.21, 1e-12, "equity[2]")
}

func TestFlatNoCost_EverythingNeutral(t *testing.T) {
	bars := dailyBars(100, 120, 80, 95, 130)
	positions := dailyPositions(bars, 0, 0, 0, 0, 0)

	points := BuildReturns(bars, positions, 0)
	equity := EquityCurve(points)
	drawdown := DrawdownCurve(equity)

	for i := range points {
		if points[i].NetReturn != 0 {
			t.Errorf("NetReturn[%d] = %v, want 0", i, points[i].NetReturn)
		}
		if equity[i] != 1.0 {
			t.Errorf("equity[%d] = %v, want 1.0", i, equity[i])
		}
		if drawdown[i] != 0 {
			t.Errorf("drawdown[%d] = %v, want 0", i, drawdown[i])
		}
	}
}

func TestDrawdownCurve_AlwaysNonPositive(t *testing.T) {
	equity := []float64{1.0, 1.1, 0.9, 1.2, 0.8, 1.5}
	drawdown := DrawdownCurve(equity)

	for i, dd := range drawdown {
		if dd > 0 {
			t.Errorf("drawdown[%d] = %v, want <= 0", i, dd)
		}
	}

	// Trough 0.8 against peak 1.2
	approx(t, minOf(drawdown), (0.8-1.2)/1.2, 1e-12, "min drawdown")
}

func TestDrawdownCurve_PeakResetsPerSlice(t *testing.T) {
	equity := []float64{1.0, 2.0, 1.5, 1.6}

	full := DrawdownCurve(equity)
	approx(t, full[2], (1.5-2.0)/2.0, 1e-12, "full[2]")

	// On the sub-slice the peak starts at 1.5, so there is no dip.
	sub := DrawdownCurve(equity[2:])
	if sub[0] != 0 || sub[1] != 0 {
		t.Errorf("sub-slice drawdown = %v, want all zeros", sub)
	}
}

func TestMinOf_Empty(t *testing.T) {
	if got := minOf(nil); got != 0 {
		t.Errorf("minOf(nil) = %v, want 0", got)
	}
}
