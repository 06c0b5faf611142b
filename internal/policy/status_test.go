package policy

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

type StatusLineTestSuite struct {
	suite.Suite
}

func TestStatusLineSuite(t *testing.T) {
	suite.Run(t, new(StatusLineTestSuite))
}

func markerPosition(line string) int {
	start := strings.Index(line, "|")

	return strings.Index(line, "{") - start - 1
}

func (suite *StatusLineTestSuite) TestPositions() {
	tests := []struct {
		name     string
		low      float64
		current  float64
		high     float64
		expected int
	}{
		{name: "at low", low: 0, current: 0, high: 1, expected: 0},
		{name: "at high", low: 0, current: 1, high: 1, expected: 10},
		{name: "middle", low: 0, current: 0.5, high: 1, expected: 5},
		{name: "clamped below", low: 1, current: 0.5, high: 2, expected: 0},
		{name: "clamped above", low: 0, current: 3, high: 1, expected: 10},
		{name: "equal bounds degrade to midpoint", low: 1, current: 1, high: 1, expected: 5},
		{name: "undefined current", low: 0, current: math.NaN(), high: 1, expected: 5},
		{name: "inverted bounds", low: 1, current: 0.25, high: 0, expected: 7},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			line := StatusLine(tc.low, tc.current, tc.high, 10)
			suite.Equal(tc.expected, markerPosition(line), line)
			suite.Equal(10, strings.Count(line, "-"), line)
		})
	}
}
