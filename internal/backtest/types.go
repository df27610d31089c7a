package backtest

import (
	"encoding/json"
	"math"
	"sort"
	"time"
)

// Direction indicates which side a trade was on
type Direction string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
)

// ReturnPoint holds the per-bar return decomposition
type ReturnPoint struct {
	Time              time.Time `json:"time"`
	PeriodReturn      float64   `json:"period_return"`
	EffectivePosition float64   `json:"effective_position"` // previous bar's position * size
	StrategyReturn    float64   `json:"strategy_return"`
	TradeCost         float64   `json:"trade_cost"`
	NetReturn         float64   `json:"net_return"`
}

// Trade represents one completed round trip reconstructed from the
// position series. Trades are emitted in the order positions were closed.
type Trade struct {
	EntryTime  time.Time `json:"entry_time"`
	ExitTime   time.Time `json:"exit_time"`
	EntryPrice float64   `json:"entry_price"`
	ExitPrice  float64   `json:"exit_price"`
	Direction  Direction `json:"direction"`
	PnL        float64   `json:"pnl"` // fractional return of the trade
}

// IsWin returns true if the trade was profitable
func (t Trade) IsWin() bool {
	return t.PnL > 0
}

// Duration returns how long the trade was held
func (t Trade) Duration() time.Duration {
	return t.ExitTime.Sub(t.EntryTime)
}

// Stats holds the scalar performance statistics. All return-like values
// are fractions (0.05 = 5%), drawdowns are negative fractions.
type Stats struct {
	TotalReturn     float64 `json:"total_return"`
	SharpeRatio     float64 `json:"sharpe_ratio"`
	MaxDrawdown     float64 `json:"max_drawdown"`
	TotalTrades     int     `json:"total_trades"`
	WinningTrades   int     `json:"winning_trades"`
	LosingTrades    int     `json:"losing_trades"`
	WinRate         float64 `json:"win_rate"`
	ProfitFactor    float64 `json:"profit_factor"`
	AvgWinLossRatio float64 `json:"avg_win_loss_ratio"`
	CalmarRatio     float64 `json:"calmar_ratio"`
}

// MarshalJSON renders ProfitFactor as the string "inf" when it is
// infinite, since JSON has no representation for it.
func (s Stats) MarshalJSON() ([]byte, error) {
	type alias Stats
	out := struct {
		alias
		ProfitFactor any `json:"profit_factor"`
	}{alias: alias(s)}

	if math.IsInf(s.ProfitFactor, 1) {
		out.ProfitFactor = "inf"
	} else {
		out.ProfitFactor = s.ProfitFactor
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts both the numeric and the "inf" string form of
// ProfitFactor produced by MarshalJSON.
func (s *Stats) UnmarshalJSON(data []byte) error {
	type alias Stats
	in := struct {
		*alias
		ProfitFactor json.RawMessage `json:"profit_factor"`
	}{alias: (*alias)(s)}

	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	if string(in.ProfitFactor) == `"inf"` {
		s.ProfitFactor = math.Inf(1)
		return nil
	}
	if len(in.ProfitFactor) > 0 {
		return json.Unmarshal(in.ProfitFactor, &s.ProfitFactor)
	}
	return nil
}

// YearlyStat holds the per-calendar-year breakdown
type YearlyStat struct {
	Year        int     `json:"year"`
	Return      float64 `json:"return"`
	Sharpe      float64 `json:"sharpe"`
	MaxDrawdown float64 `json:"max_drawdown"`
}

// Report is the complete, immutable backtest output. It is constructed
// once per engine invocation and never mutated afterward.
type Report struct {
	Symbol         string             `json:"symbol,omitempty"`
	Strategy       string             `json:"strategy,omitempty"`
	StartDate      time.Time          `json:"start_date"`
	EndDate        time.Time          `json:"end_date"`
	Cost           float64            `json:"cost"`
	PeriodsPerYear int                `json:"periods_per_year"`
	Series         []ReturnPoint      `json:"series"`
	Equity         []float64          `json:"equity"`
	Drawdown       []float64          `json:"drawdown"`
	Trades         []Trade            `json:"trades"`
	Stats          Stats              `json:"stats"`
	Yearly         map[int]YearlyStat `json:"yearly"`
}

// Years returns the calendar years present in the report, ascending.
func (r *Report) Years() []int {
	years := make([]int, 0, len(r.Yearly))
	for y := range r.Yearly {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}
