package buy_hold

import (
	"github.com/newthinker/sigma/internal/core"
	"github.com/newthinker/sigma/internal/strategy"
)

// BuyHold is the benchmark strategy: fully long on every bar.
type BuyHold struct {
	size float64
}

// New creates a new buy-and-hold strategy
func New() *BuyHold {
	return &BuyHold{size: 1.0}
}

func (b *BuyHold) Name() string {
	return "buy_hold"
}

func (b *BuyHold) Description() string {
	return "Buy & Hold benchmark"
}

func (b *BuyHold) Init(cfg strategy.Config) error {
	if size, ok := cfg.Params["size"].(float64); ok && size > 0 && size <= 1 {
		b.size = size
	}
	return nil
}

// Positions returns a fully-long series aligned to the bars.
func (b *BuyHold) Positions(bars []core.OHLCV) ([]core.PositionSample, error) {
	positions := make([]core.PositionSample, len(bars))
	for i := range bars {
		positions[i] = core.PositionSample{
			Time:     bars[i].Time,
			Position: core.PositionLong,
			Size:     b.size,
		}
	}
	return positions, nil
}
