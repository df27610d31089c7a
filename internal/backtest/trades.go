package backtest

import (
	"time"

	"github.com/newthinker/sigma/internal/core"
)

// openPosition is the non-flat state of the trade reconstructor.
// A nil *openPosition means flat.
type openPosition struct {
	direction  Direction
	entryPrice float64
	entryTime  time.Time
}

func (o *openPosition) close(exitPrice float64, exitTime time.Time) Trade {
	pnl := (exitPrice - o.entryPrice) / o.entryPrice
	if o.direction == DirectionShort {
		pnl = (o.entryPrice - exitPrice) / o.entryPrice
	}
	return Trade{
		EntryTime:  o.entryTime,
		ExitTime:   exitTime,
		EntryPrice: o.entryPrice,
		ExitPrice:  exitPrice,
		Direction:  o.direction,
		PnL:        pnl,
	}
}

func directionOf(position int) Direction {
	if position < 0 {
		return DirectionShort
	}
	return DirectionLong
}

// ReconstructTrades scans the position series left to right and emits
// one Trade per closed position, in closing order. Transitions fire
// only when the position value changes:
//
//	flat -> long/short  opens a position
//	long/short -> flat  closes it and emits a Trade
//	long <-> short      a flip: closes the old side and opens the new
//	                    one atomically at the same bar
//
// A transition at bar i is priced at the close prevailing when the new
// position takes effect (the previous bar's close; the first bar's own
// close when the series opens already positioned) and stamped with bar
// i's timestamp. A position still open at the end of the series emits
// nothing: only closed trades are reported.
func ReconstructTrades(bars []core.OHLCV, positions []core.PositionSample) []Trade {
	trades := []Trade{}
	var open *openPosition

	for i := range positions {
		pos := positions[i].Position

		price := bars[0].Close
		if i > 0 {
			price = bars[i-1].Close
		}
		ts := bars[i].Time

		switch {
		case open == nil && pos != 0:
			open = &openPosition{
				direction:  directionOf(pos),
				entryPrice: price,
				entryTime:  ts,
			}

		case open != nil && pos == 0:
			trades = append(trades, open.close(price, ts))
			open = nil

		case open != nil && pos != 0 && directionOf(pos) != open.direction:
			trades = append(trades, open.close(price, ts))
			open = &openPosition{
				direction:  directionOf(pos),
				entryPrice: price,
				entryTime:  ts,
			}
		}
	}

	return trades
}
