package backtest

import (
	"github.com/newthinker/sigma/internal/core"
)

// validateInput rejects malformed input before any computation starts.
// These are caller bugs, not recoverable conditions.
func validateInput(bars []core.OHLCV, positions []core.PositionSample) error {
	if len(bars) == 0 {
		return core.WrapErrorf(core.ErrInvalidInput, "empty price series")
	}
	if len(bars) != len(positions) {
		return core.WrapErrorf(core.ErrInvalidInput,
			"price series has %d bars but position series has %d samples", len(bars), len(positions))
	}

	for i := range bars {
		if !bars[i].IsValid() {
			return core.WrapErrorf(core.ErrInvalidInput, "bar %d missing close or timestamp", i)
		}
		if !bars[i].Time.Equal(positions[i].Time) {
			return core.WrapErrorf(core.ErrInvalidInput,
				"timestamp mismatch at index %d: bar %s vs position %s",
				i, bars[i].Time, positions[i].Time)
		}
		if i > 0 && !bars[i].Time.After(bars[i-1].Time) {
			return core.WrapErrorf(core.ErrInvalidInput,
				"timestamps not strictly increasing at index %d", i)
		}
		if p := positions[i].Position; p < -1 || p > 1 {
			return core.WrapErrorf(core.ErrInvalidInput,
				"position %d at index %d outside {-1, 0, 1}", p, i)
		}
		if s := positions[i].Size; s < 0 || s > 1 {
			return core.WrapErrorf(core.ErrInvalidInput,
				"size %g at index %d outside (0, 1]", s, i)
		}
	}
	return nil
}

// ComputeReport evaluates a position signal against a price series and
// returns the full performance report. It is a deterministic pure
// function of its inputs: no I/O, no shared state, and after input
// validation it cannot fail. Independent invocations may run in
// parallel without locking.
func ComputeReport(bars []core.OHLCV, positions []core.PositionSample, cost float64) (*Report, error) {
	if err := validateInput(bars, positions); err != nil {
		return nil, err
	}

	periodsPerYear := InferPeriodsPerYear(core.Times(bars))
	points := BuildReturns(bars, positions, cost)
	equity := EquityCurve(points)
	drawdown := DrawdownCurve(equity)
	trades := ReconstructTrades(bars, positions)

	return &Report{
		StartDate:      bars[0].Time,
		EndDate:        bars[len(bars)-1].Time,
		Cost:           cost,
		PeriodsPerYear: periodsPerYear,
		Series:         points,
		Equity:         equity,
		Drawdown:       drawdown,
		Trades:         trades,
		Stats:          CalculateStats(points, equity, drawdown, trades, periodsPerYear),
		Yearly:         CalculateYearlyStats(points, equity, periodsPerYear),
	}, nil
}
