package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeRecord is one closed round trip: a filled BUY followed by a filled SELL.
type TradeRecord struct {
	EntryTime  time.Time `yaml:"entry_time" json:"entry_time" csv:"entry_time"`
	ExitTime   time.Time `yaml:"exit_time" json:"exit_time" csv:"exit_time"`
	EntryPrice float64   `yaml:"entry_price" json:"entry_price" csv:"entry_price"`
	ExitPrice  float64   `yaml:"exit_price" json:"exit_price" csv:"exit_price"`
	Size       float64   `yaml:"size" json:"size" csv:"size"`
	// PnL is the gross profit of the round trip, fees are reported separately.
	PnL float64 `yaml:"pnl" json:"pnl" csv:"pnl"`
	// PnLPct is the price move relative to the entry price, in percent.
	PnLPct float64 `yaml:"pnl_pct" json:"pnl_pct" csv:"pnl_pct"`
	Fees   float64 `yaml:"fees" json:"fees" csv:"fees"`
	Reason string  `yaml:"reason" json:"reason" csv:"reason"`
}

// NewTradeRecord closes out a position at the given exit fill.
// For example, 300 units entered at 100.01 and sold at 110.0 give
// a PnL of (110.0-100.01)*300 = 2997.
func NewTradeRecord(position PositionState, exitTime time.Time, exitPrice float64, exitFee float64, reason string) TradeRecord {
	entryDec := decimal.NewFromFloat(position.EntryPrice)
	exitDec := decimal.NewFromFloat(exitPrice)
	sizeDec := decimal.NewFromFloat(position.Size)

	pnl, _ := exitDec.Sub(entryDec).Mul(sizeDec).Float64()

	pnlPct := 0.0
	if !entryDec.IsZero() {
		pnlPct, _ = exitDec.Sub(entryDec).Div(entryDec).Mul(decimal.NewFromInt(100)).Float64()
	}

	fees, _ := decimal.NewFromFloat(position.EntryFee).Add(decimal.NewFromFloat(exitFee)).Float64()

	return TradeRecord{
		EntryTime:  position.EntryTime,
		ExitTime:   exitTime,
		EntryPrice: position.EntryPrice,
		ExitPrice:  exitPrice,
		Size:       position.Size,
		PnL:        pnl,
		PnLPct:     pnlPct,
		Fees:       fees,
		Reason:     reason,
	}
}

// NetPnL is the PnL after entry and exit fees.
func (t TradeRecord) NetPnL() float64 {
	net, _ := decimal.NewFromFloat(t.PnL).Sub(decimal.NewFromFloat(t.Fees)).Float64()

	return net
}

// HoldingTime is the time between entry and exit fills.
func (t TradeRecord) HoldingTime() time.Duration {
	return t.ExitTime.Sub(t.EntryTime)
}
