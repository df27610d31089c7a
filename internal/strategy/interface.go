package strategy

import (
	"github.com/newthinker/sigma/internal/core"
)

// Config holds strategy configuration
type Config struct {
	Params map[string]any
}

// Strategy turns a bar series into a position series aligned 1:1 with
// it. Implementations must be deterministic: the backtest engine is a
// pure function of its inputs, and strategies are part of those inputs.
type Strategy interface {
	Name() string
	Description() string
	Init(cfg Config) error
	Positions(bars []core.OHLCV) ([]core.PositionSample, error)
}
