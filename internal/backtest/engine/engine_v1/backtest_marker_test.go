package engine

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/stretchr/testify/suite"
)

// BacktestMarkerTestSuite is a test suite for BacktestMarker
type BacktestMarkerTestSuite struct {
	suite.Suite
	marker *BacktestMarker
	bar    types.Bar
}

// SetupTest runs before each test
func (suite *BacktestMarkerTestSuite) SetupTest() {
	suite.marker = NewBacktestMarker()
	suite.bar = types.Bar{
		Time:  time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		Open:  100,
		High:  101,
		Low:   99,
		Close: 100.5,
	}
}

// TestBacktestMarkerSuite runs the test suite
func TestBacktestMarkerSuite(t *testing.T) {
	suite.Run(t, new(BacktestMarkerTestSuite))
}

func (suite *BacktestMarkerTestSuite) TestEmptyJournal() {
	suite.Empty(suite.marker.GetMarks())
}

func (suite *BacktestMarkerTestSuite) TestMarkDecision() {
	suite.marker.MarkDecision(suite.bar, types.Enter(2, "close below lower band"))
	suite.marker.MarkDecision(suite.bar, types.Exit(types.OrderReasonStopLoss))

	marks := suite.marker.GetMarks()
	suite.Require().Len(marks, 2)

	suite.Equal(types.MarkColorGreen, marks[0].Color)
	suite.Equal("ENTER", marks[0].Title)
	suite.Equal("close below lower band", marks[0].Message)
	suite.Equal(types.MarkCategoryDecision, marks[0].Category)
	suite.Equal(2.0, marks[0].Decision.Unwrap().Size)

	suite.Equal(types.MarkColorRed, marks[1].Color)
	suite.Equal(types.OrderReasonStopLoss, marks[1].Message)
}

func (suite *BacktestMarkerTestSuite) TestMarkFillAndCancel() {
	suite.marker.MarkFill(suite.bar, types.Order{
		Side:          types.PurchaseTypeSell,
		RequestedSize: 1.5,
		Status:        types.OrderStatusFilled,
		FillPrice:     optional.Some(100.0),
		Fee:           0.15,
	})
	suite.marker.MarkCancel(suite.bar, types.Order{
		Side:   types.PurchaseTypeBuy,
		Status: types.OrderStatusRejected,
		Reason: types.OrderReasonInsufficientBuyPower,
	})

	marks := suite.marker.GetMarks()
	suite.Require().Len(marks, 2)

	suite.Equal("SELL filled", marks[0].Title)
	suite.Equal(types.MarkColorRed, marks[0].Color)
	suite.Equal(types.MarkCategoryFill, marks[0].Category)
	suite.True(marks[0].Decision.IsNone())

	suite.Equal("BUY REJECTED", marks[1].Title)
	suite.Equal(types.OrderReasonInsufficientBuyPower, marks[1].Message)
	suite.Equal(types.MarkCategoryCancel, marks[1].Category)
}

func (suite *BacktestMarkerTestSuite) TestMarkStaleAndSkip() {
	suite.marker.MarkStale(suite.bar, 120)
	suite.marker.MarkSkip(suite.bar, types.Exit("trailing_stop"), "order pending")

	marks := suite.marker.GetMarks()
	suite.Require().Len(marks, 2)
	suite.Equal(types.MarkCategoryStale, marks[0].Category)
	suite.Equal("bar is 120s old", marks[0].Message)
	suite.Equal(types.MarkCategorySkip, marks[1].Category)
	suite.Equal(types.IntentExit, marks[1].Decision.Unwrap().Intent)
}

func (suite *BacktestMarkerTestSuite) TestGetMarksReturnsCopy() {
	suite.marker.MarkStale(suite.bar, 70)

	marks := suite.marker.GetMarks()
	marks[0].Title = "changed"

	suite.Equal("stale", suite.marker.GetMarks()[0].Title)
}

func (suite *BacktestMarkerTestSuite) TestCleanup() {
	suite.marker.MarkStale(suite.bar, 70)
	suite.marker.Cleanup()

	suite.Empty(suite.marker.GetMarks())
}
