package collector

import (
	"time"

	"github.com/newthinker/sigma/internal/core"
)

// HistoryProvider fetches historical OHLCV bars from a market-data venue.
// Implementations return bars ordered by time ascending; the engine
// validates the rest.
type HistoryProvider interface {
	Name() string
	FetchHistory(symbol string, start, end time.Time, interval string) ([]core.OHLCV, error)
}
