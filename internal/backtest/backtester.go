package backtest

import (
	"context"
	"time"

	"github.com/newthinker/sigma/internal/core"
	"github.com/newthinker/sigma/internal/strategy"
	"go.uber.org/zap"
)

// OHLCVProvider defines the interface for fetching historical OHLCV data
type OHLCVProvider interface {
	FetchHistory(symbol string, start, end time.Time, interval string) ([]core.OHLCV, error)
}

// Backtester wires a data provider and a position strategy to the
// report engine. The engine itself stays a pure function; the
// Backtester owns the impure edges (fetching, logging).
type Backtester struct {
	provider OHLCVProvider
	logger   *zap.Logger
}

// New creates a new Backtester with the given OHLCV provider
func New(provider OHLCVProvider, logger *zap.Logger) *Backtester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backtester{
		provider: provider,
		logger:   logger,
	}
}

// Run fetches history for the symbol, derives the position series from
// the strategy and computes the performance report.
func (b *Backtester) Run(ctx context.Context, strat strategy.Strategy, symbol string, start, end time.Time, interval string, cost float64) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bars, err := b.provider.FetchHistory(symbol, start, end, interval)
	if err != nil {
		return nil, core.WrapError(core.ErrProviderFailed, err)
	}
	if len(bars) == 0 {
		return nil, core.ErrNoData
	}

	b.logger.Debug("history fetched",
		zap.String("symbol", symbol),
		zap.String("interval", interval),
		zap.Int("bars", len(bars)),
	)

	positions, err := strat.Positions(bars)
	if err != nil {
		return nil, core.WrapError(core.ErrStrategyFailed, err)
	}

	report, err := ComputeReport(bars, positions, cost)
	if err != nil {
		return nil, err
	}

	report.Symbol = symbol
	report.Strategy = strat.Name()

	b.logger.Info("backtest complete",
		zap.String("symbol", symbol),
		zap.String("strategy", strat.Name()),
		zap.Int("trades", report.Stats.TotalTrades),
		zap.Float64("total_return", report.Stats.TotalReturn),
	)

	return report, nil
}
