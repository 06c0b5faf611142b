package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type TradeTestSuite struct {
	suite.Suite
}

func TestTradeSuite(t *testing.T) {
	suite.Run(t, new(TradeTestSuite))
}

func (suite *TradeTestSuite) TestNewTradeRecord() {
	entry := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	exit := entry.Add(3 * time.Hour)

	tests := []struct {
		name           string
		position       PositionState
		exitPrice      float64
		exitFee        float64
		expectedPnL    float64
		expectedPnLPct float64
		expectedFees   float64
		expectedNet    float64
	}{
		{
			name:           "winning trade",
			position:       PositionState{IsOpen: true, EntryPrice: 100.01, Size: 300, EntryTime: entry, EntryFee: 1.5},
			exitPrice:      110.0,
			exitFee:        1.5,
			expectedPnL:    2997,
			expectedPnLPct: 9.98900109989001,
			expectedFees:   3,
			expectedNet:    2994,
		},
		{
			name:           "losing trade",
			position:       PositionState{IsOpen: true, EntryPrice: 100, Size: 10, EntryTime: entry},
			exitPrice:      95,
			expectedPnL:    -50,
			expectedPnLPct: -5,
			expectedNet:    -50,
		},
		{
			name:           "zero entry price",
			position:       PositionState{IsOpen: true, EntryPrice: 0, Size: 10, EntryTime: entry},
			exitPrice:      1,
			expectedPnL:    10,
			expectedPnLPct: 0,
			expectedNet:    10,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			record := NewTradeRecord(tc.position, exit, tc.exitPrice, tc.exitFee, OrderReasonStrategy)
			suite.InDelta(tc.expectedPnL, record.PnL, 1e-9)
			suite.InDelta(tc.expectedPnLPct, record.PnLPct, 1e-9)
			suite.InDelta(tc.expectedFees, record.Fees, 1e-9)
			suite.InDelta(tc.expectedNet, record.NetPnL(), 1e-9)
			suite.Equal(3*time.Hour, record.HoldingTime())
			suite.Equal(tc.position.Size, record.Size)
			suite.Equal(OrderReasonStrategy, record.Reason)
		})
	}
}

func (suite *TradeTestSuite) TestPositionMarketValue() {
	suite.Equal(0.0, PositionState{}.MarketValue(10))
	suite.Equal(25.0, PositionState{IsOpen: true, Size: 2.5}.MarketValue(10))
}

func (suite *TradeTestSuite) TestCSVTime() {
	tests := []struct {
		name     string
		value    string
		expected time.Time
		wantErr  bool
	}{
		{name: "rfc3339", value: "2024-03-01T10:00:00Z", expected: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
		{name: "space layout", value: "2024-03-01 10:00:00", expected: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
		{name: "epoch seconds", value: "1709287200", expected: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
		{name: "epoch millis", value: "1709287200000", expected: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
		{name: "garbage", value: "yesterday", wantErr: true},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			var ts CSVTime

			err := ts.UnmarshalCSV(tc.value)
			if tc.wantErr {
				suite.Error(err)

				return
			}

			suite.Require().NoError(err)
			suite.True(tc.expected.Equal(ts.Time))

			out, err := ts.MarshalCSV()
			suite.NoError(err)
			suite.Equal("2024-03-01T10:00:00Z", out)
		})
	}
}
