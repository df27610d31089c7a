package core

import "time"

// OHLCV represents a candlestick/bar
type OHLCV struct {
	Symbol   string    `json:"symbol"`
	Interval string    `json:"interval"` // "1m", "1h", "1d"
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   float64   `json:"volume"`
	Time     time.Time `json:"time"`
}

// IsValid checks if the bar has the fields the engine consumes
func (b OHLCV) IsValid() bool {
	return b.Close > 0 && !b.Time.IsZero()
}

// Closes extracts the close series from a bar sequence
func Closes(bars []OHLCV) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// Times extracts the timestamp series from a bar sequence
func Times(bars []OHLCV) []time.Time {
	out := make([]time.Time, len(bars))
	for i, b := range bars {
		out[i] = b.Time
	}
	return out
}
