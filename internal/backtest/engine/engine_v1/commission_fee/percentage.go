package commission_fee

import (
	"math"

	"github.com/shopspring/decimal"
)

// PercentageCommissionFee charges Rate times the notional of the fill.
// A rate of 0.001 is 0.1%.
type PercentageCommissionFee struct {
	Rate float64
}

func NewPercentageCommissionFee(rate float64) CommissionFee {
	return &PercentageCommissionFee{Rate: rate}
}

func (c *PercentageCommissionFee) Calculate(quantity float64, price float64) float64 {
	if c.Rate <= 0 {
		return 0
	}

	fee, _ := decimal.NewFromFloat(math.Abs(quantity)).
		Mul(decimal.NewFromFloat(price)).
		Mul(decimal.NewFromFloat(c.Rate)).
		Float64()

	return fee
}
