package backtest

import (
	"math"
)

// CalculateStats computes the scalar performance statistics from the
// return series, equity/drawdown curves and the reconstructed trades.
// Degenerate ratios never error: Sharpe and Calmar fall back to 0,
// profit factor falls back to +Inf when wins exist without losses.
func CalculateStats(points []ReturnPoint, equity, drawdown []float64, trades []Trade, periodsPerYear int) Stats {
	stats := Stats{
		SharpeRatio:     sharpeRatio(netReturns(points), periodsPerYear),
		MaxDrawdown:     minOf(drawdown),
		TotalTrades:     len(trades),
		WinRate:         winRate(trades),
		ProfitFactor:    profitFactor(trades),
		AvgWinLossRatio: avgWinLossRatio(trades),
	}

	if len(equity) > 0 {
		stats.TotalReturn = equity[len(equity)-1] - 1
	}

	for _, t := range trades {
		if t.IsWin() {
			stats.WinningTrades++
		} else if t.PnL < 0 {
			stats.LosingTrades++
		}
	}

	if stats.MaxDrawdown != 0 {
		stats.CalmarRatio = stats.TotalReturn / math.Abs(stats.MaxDrawdown)
	}

	return stats
}

// netReturns extracts the defined net-return observations. The first
// bar has no period return, so it is not an observation.
func netReturns(points []ReturnPoint) []float64 {
	if len(points) < 2 {
		return nil
	}
	out := make([]float64, 0, len(points)-1)
	for _, p := range points[1:] {
		out = append(out, p.NetReturn)
	}
	return out
}

// sharpeRatio computes the annualized risk-adjusted return, assuming a
// risk-free rate of 0. Fewer than two observations or zero variance
// yield exactly 0.
func sharpeRatio(returns []float64, periodsPerYear int) float64 {
	if len(returns) < 2 {
		return 0
	}

	m := mean(returns)
	std := sampleStd(returns, m)
	if std == 0 {
		return 0
	}

	return m / std * math.Sqrt(float64(periodsPerYear))
}

func winRate(trades []Trade) float64 {
	if len(trades) == 0 {
		return 0
	}
	var wins int
	for _, t := range trades {
		if t.IsWin() {
			wins++
		}
	}
	return float64(wins) / float64(len(trades))
}

// profitFactor is gross profit over gross loss. With no losing trades
// it is +Inf when any winning trade exists, otherwise 0.
func profitFactor(trades []Trade) float64 {
	var grossProfit, grossLoss float64
	for _, t := range trades {
		if t.PnL > 0 {
			grossProfit += t.PnL
		} else if t.PnL < 0 {
			grossLoss += -t.PnL
		}
	}

	if grossLoss == 0 {
		if grossProfit > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return grossProfit / grossLoss
}

// avgWinLossRatio is the mean winning pnl over the magnitude of the
// mean losing pnl; 0 when either side is empty.
func avgWinLossRatio(trades []Trade) float64 {
	var winSum, lossSum float64
	var wins, losses int
	for _, t := range trades {
		if t.PnL > 0 {
			winSum += t.PnL
			wins++
		} else if t.PnL < 0 {
			lossSum += -t.PnL
			losses++
		}
	}

	if wins == 0 || losses == 0 {
		return 0
	}
	return (winSum / float64(wins)) / (lossSum / float64(losses))
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStd is the n-1 standard deviation.
func sampleStd(values []float64, mean float64) float64 {
	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return math.Sqrt(variance / float64(len(values)-1))
}
