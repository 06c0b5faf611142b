package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/suite"
)

type UtilsTestSuite struct {
	suite.Suite
}

func TestUtilsTestSuite(t *testing.T) {
	suite.Run(t, new(UtilsTestSuite))
}

func (suite *UtilsTestSuite) TestRoundToDecimalPrecision() {
	tests := []struct {
		name      string
		quantity  float64
		precision int
		expected  float64
	}{
		{"whole units", 9.99, 0, 9},
		{"two places", 1.23456, 2, 1.23},
		{"rounds down not to nearest", 0.129, 2, 0.12},
		{"already exact", 5.5, 3, 5.5},
		{"zero", 0, 4, 0},
		{"negative precision keeps value", 1.23456, -1, 1.23456},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(tc.expected, RoundToDecimalPrecision(tc.quantity, tc.precision))
		})
	}
}

func (suite *UtilsTestSuite) TestRoundToDecimalPrecisionNonFinite() {
	suite.True(math.IsNaN(RoundToDecimalPrecision(math.NaN(), 2)))
	suite.True(math.IsInf(RoundToDecimalPrecision(math.Inf(1), 2), 1))
}

func (suite *UtilsTestSuite) TestNotional() {
	notional, _ := Notional(3, 0.1).Float64()
	suite.Equal(0.3, notional)
}
