package types

import "time"

// PositionState is the single long position the engine may hold.
// The zero value is a flat position.
type PositionState struct {
	IsOpen        bool      `yaml:"is_open" json:"is_open"`
	EntryPrice    float64   `yaml:"entry_price" json:"entry_price"`
	Size          float64   `yaml:"size" json:"size"`
	HighWaterMark float64   `yaml:"high_water_mark" json:"high_water_mark"`
	EntryTime     time.Time `yaml:"entry_time" json:"entry_time"`
	EntryFee      float64   `yaml:"entry_fee" json:"entry_fee"`
}

// MarketValue marks the position to the given price.
func (p PositionState) MarketValue(price float64) float64 {
	if !p.IsOpen {
		return 0
	}

	return p.Size * price
}
