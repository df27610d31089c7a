package ma_crossover

import (
	"fmt"

	"github.com/newthinker/sigma/internal/core"
	"github.com/newthinker/sigma/internal/indicator"
	"github.com/newthinker/sigma/internal/strategy"
)

// MACrossover holds a long position while the fast SMA is above the
// slow SMA, a short position while it is below, and stays flat until
// both averages are defined.
type MACrossover struct {
	fastPeriod int
	slowPeriod int
}

// New creates a new MA Crossover strategy
func New(fastPeriod, slowPeriod int) *MACrossover {
	return &MACrossover{
		fastPeriod: fastPeriod,
		slowPeriod: slowPeriod,
	}
}

func (m *MACrossover) Name() string {
	return "ma_crossover"
}

func (m *MACrossover) Description() string {
	return fmt.Sprintf("MA Crossover (%d/%d)", m.fastPeriod, m.slowPeriod)
}

func (m *MACrossover) Init(cfg strategy.Config) error {
	if fast, ok := intParam(cfg.Params, "fast_period"); ok {
		m.fastPeriod = fast
	}
	if slow, ok := intParam(cfg.Params, "slow_period"); ok {
		m.slowPeriod = slow
	}
	if m.fastPeriod <= 0 || m.slowPeriod <= m.fastPeriod {
		return fmt.Errorf("invalid periods: fast %d, slow %d", m.fastPeriod, m.slowPeriod)
	}
	return nil
}

// intParam reads an integer parameter, accepting the float64 form
// produced by JSON decoding.
func intParam(params map[string]any, key string) (int, bool) {
	switch v := params[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	}
	return 0, false
}

// Positions derives the position series from the SMA crossover state.
func (m *MACrossover) Positions(bars []core.OHLCV) ([]core.PositionSample, error) {
	if len(bars) < m.slowPeriod {
		return nil, core.WrapErrorf(core.ErrInsufficientData,
			"need %d bars for MA(%d), have %d", m.slowPeriod, m.slowPeriod, len(bars))
	}

	prices := core.Closes(bars)
	fastMA := indicator.SMA(prices, m.fastPeriod)
	slowMA := indicator.SMA(prices, m.slowPeriod)

	positions := make([]core.PositionSample, len(bars))
	for i := range bars {
		positions[i] = core.PositionSample{Time: bars[i].Time, Size: 1.0}

		// Flat until the slow MA has enough history
		if i < m.slowPeriod-1 {
			continue
		}

		fast := fastMA[i-m.fastPeriod+1]
		slow := slowMA[i-m.slowPeriod+1]
		switch {
		case fast > slow:
			positions[i].Position = core.PositionLong
		case fast < slow:
			positions[i].Position = core.PositionShort
		}
	}

	return positions, nil
}
