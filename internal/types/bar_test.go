package types

import (
	"math"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type BarTestSuite struct {
	suite.Suite
}

func TestBarSuite(t *testing.T) {
	suite.Run(t, new(BarTestSuite))
}

func (suite *BarTestSuite) TestValidate() {
	valid := Bar{Time: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 100}
	suite.NoError(valid.Validate())

	tests := []struct {
		name   string
		mutate func(b *Bar)
	}{
		{"nan open", func(b *Bar) { b.Open = math.NaN() }},
		{"inf high", func(b *Bar) { b.High = math.Inf(1) }},
		{"negative inf low", func(b *Bar) { b.Low = math.Inf(-1) }},
		{"nan close", func(b *Bar) { b.Close = math.NaN() }},
		{"nan volume", func(b *Bar) { b.Volume = math.NaN() }},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			bar := valid
			tc.mutate(&bar)

			err := bar.Validate()
			suite.Require().Error(err)
			suite.True(errors.HasCode(err, errors.ErrCodeIndicatorCalculation))
		})
	}
}
