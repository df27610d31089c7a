// internal/strategy/registry/registry.go
package registry

import (
	"sort"

	"github.com/newthinker/sigma/internal/core"
	"github.com/newthinker/sigma/internal/strategy"
	"github.com/newthinker/sigma/internal/strategy/buy_hold"
	"github.com/newthinker/sigma/internal/strategy/ma_crossover"
)

// builders maps strategy names to constructors with default parameters.
var builders = map[string]func() strategy.Strategy{
	"ma_crossover": func() strategy.Strategy { return ma_crossover.New(10, 30) },
	"buy_hold":     func() strategy.Strategy { return buy_hold.New() },
}

// Names returns the registered strategy names, sorted.
func Names() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New constructs a strategy by name and applies the given parameters.
func New(name string, params map[string]any) (strategy.Strategy, error) {
	build, ok := builders[name]
	if !ok {
		return nil, core.WrapErrorf(core.ErrStrategyFailed, "unknown strategy %q", name)
	}

	strat := build()
	if err := strat.Init(strategy.Config{Params: params}); err != nil {
		return nil, err
	}
	return strat, nil
}
