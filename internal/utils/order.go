package utils

import (
	"math"

	"github.com/shopspring/decimal"
)

// RoundToDecimalPrecision rounds the quantity down to the specified decimal precision.
// A negative precision leaves the quantity untouched.
func RoundToDecimalPrecision(quantity float64, decimalPrecision int) float64 {
	if decimalPrecision < 0 || math.IsNaN(quantity) || math.IsInf(quantity, 0) {
		return quantity
	}

	rounded, _ := decimal.NewFromFloat(quantity).RoundDown(int32(decimalPrecision)).Float64()

	return rounded
}

// Notional returns quantity x price computed in decimal.
func Notional(quantity float64, price float64) decimal.Decimal {
	return decimal.NewFromFloat(quantity).Mul(decimal.NewFromFloat(price))
}
