package backtest

import (
	"testing"
	"time"

	"github.com/newthinker/sigma/internal/core"
)

func barsAt(points []struct {
	ts    string
	close float64
}) []core.OHLCV {
	bars := make([]core.OHLCV, len(points))
	for i, p := range points {
		ts, err := time.Parse("2006-01-02", p.ts)
		if err != nil {
			panic(err)
		}
		bars[i] = core.OHLCV{Symbol: "BTCUSDT", Close: p.close, Time: ts}
	}
	return bars
}

func TestCalculateYearlyStats_TwoYears(t *testing.T) {
	// Year 2023 stays flat; year 2024 takes a single losing trade.
	bars := barsAt([]struct {
		ts    string
		close float64
	}{
		{"2023-01-01", 100},
		{"2023-06-01", 105},
		{"2023-12-01", 102},
		{"2024-01-01", 100},
		{"2024-02-01", 90},
		{"2024-03-01", 90},
	})
	positions := dailyPositions(bars, 0, 0, 0, 1, 1, 0)

	points := BuildReturns(bars, positions, 0)
	equity := EquityCurve(points)
	ppy := InferPeriodsPerYear(core.Times(bars))

	yearly := CalculateYearlyStats(points, equity, ppy)

	if len(yearly) != 2 {
		t.Fatalf("expected 2 years, got %d", len(yearly))
	}

	y23, ok := yearly[2023]
	if !ok {
		t.Fatal("missing 2023")
	}
	approx(t, y23.Return, 0, 1e-12, "2023 return")
	approx(t, y23.MaxDrawdown, 0, 1e-12, "2023 max drawdown")
	approx(t, y23.Sharpe, 0, 1e-12, "2023 sharpe")

	y24, ok := yearly[2024]
	if !ok {
		t.Fatal("missing 2024")
	}
	if y24.Return >= 0 {
		t.Errorf("2024 return = %v, want < 0", y24.Return)
	}
	approx(t, y24.Return, -0.10, 1e-9, "2024 return")
	approx(t, y24.MaxDrawdown, -0.10, 1e-9, "2024 max drawdown")
}

func TestCalculateYearlyStats_DrawdownPeakResetsPerYear(t *testing.T) {
	// Equity peaks in year one, and year two recovers without reaching
	// the old peak. Globally year two is under water the whole time, but
	// against its own starting peak it only dips at its first bar.
	bars := barsAt([]struct {
		ts    string
		close float64
	}{
		{"2023-01-01", 100},
		{"2023-06-01", 200},
		{"2024-01-01", 150},
		{"2024-06-01", 180},
	})
	positions := dailyPositions(bars, 1, 1, 1, 1)

	points := BuildReturns(bars, positions, 0)
	equity := EquityCurve(points)

	yearly := CalculateYearlyStats(points, equity, 365)

	// 2024 equity slice is [1.5, 1.8]: no dip from its own first peak.
	approx(t, yearly[2024].MaxDrawdown, 0, 1e-12, "2024 max drawdown")

	// The global curve still records the fall from 2.0.
	global := minOf(DrawdownCurve(equity))
	approx(t, global, (1.5-2.0)/2.0, 1e-9, "global max drawdown")
}

func TestCalculateYearlyStats_SingleObservationYear(t *testing.T) {
	bars := barsAt([]struct {
		ts    string
		close float64
	}{
		{"2023-12-31", 100},
		{"2024-01-01", 110},
	})
	positions := dailyPositions(bars, 1, 1)

	points := BuildReturns(bars, positions, 0)
	equity := EquityCurve(points)

	yearly := CalculateYearlyStats(points, equity, 365)

	if yearly[2023].Sharpe != 0 {
		t.Errorf("2023 sharpe = %v, want 0 for a single-bar year", yearly[2023].Sharpe)
	}
	if yearly[2024].Sharpe != 0 {
		t.Errorf("2024 sharpe = %v, want 0 for a single observation", yearly[2024].Sharpe)
	}
	// A single-bar year has identical first and last equity.
	approx(t, yearly[2024].Return, 0, 1e-9, "2024 return")
}

func TestCalculateYearlyStats_Empty(t *testing.T) {
	yearly := CalculateYearlyStats(nil, nil, 365)
	if len(yearly) != 0 {
		t.Errorf("expected no yearly stats, got %d", len(yearly))
	}
}
