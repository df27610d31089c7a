package core

import "time"

// Position direction values for a PositionSample.
const (
	PositionShort = -1
	PositionFlat  = 0
	PositionLong  = 1
)

// PositionSample is one element of a strategy's signal series,
// index-aligned 1:1 with a bar series.
type PositionSample struct {
	Time     time.Time `json:"time"`
	Position int       `json:"position"` // -1 short, 0 flat, 1 long
	Size     float64   `json:"size"`     // fraction of capital in (0,1]; 0 means unset (treated as 1.0)
}

// EffectiveSize returns the capital fraction, defaulting to 1.0 when unset.
func (p PositionSample) EffectiveSize() float64 {
	if p.Size == 0 {
		return 1.0
	}
	return p.Size
}
