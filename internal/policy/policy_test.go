package policy

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-signals/internal/indicator"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/stretchr/testify/suite"
)

type PolicyTestSuite struct {
	suite.Suite
	ctx context.Context
	now time.Time
}

func TestPolicySuite(t *testing.T) {
	suite.Run(t, new(PolicyTestSuite))
}

func (suite *PolicyTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.now = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
}

func (suite *PolicyTestSuite) bandSnapshot(spec indicator.Spec, lower, upper float64) indicator.Snapshot {
	return indicator.NewSnapshot(suite.now, map[string]map[string]float64{
		spec.Key(): {
			indicator.FieldLower:  lower,
			indicator.FieldMiddle: (lower + upper) / 2,
			indicator.FieldUpper:  upper,
		},
	})
}

func (suite *PolicyTestSuite) long(entry float64) types.PositionState {
	return types.PositionState{IsOpen: true, EntryPrice: entry, Size: 10, HighWaterMark: entry, EntryTime: suite.now}
}

func (suite *PolicyTestSuite) context(closePrice float64, snapshot indicator.Snapshot, position types.PositionState) DecisionContext {
	return DecisionContext{
		Bar:      types.Bar{Time: suite.now, Open: closePrice, High: closePrice, Low: closePrice, Close: closePrice},
		Snapshot: snapshot,
		Position: position,
		Cash:     1000,
		Sizing:   DefaultSizing(),
	}
}

// Ten flat bars at 1.00 collapse a zero-deviation band onto the close, and a
// strict comparison never enters.
func (suite *PolicyTestSuite) TestFlatPriceZeroDeviationNeverEnters() {
	p, err := NewBollingerBand(BollingerBandParams{BollingerParams{Period: 5, LowerDev: 0, UpperDev: 0}})
	suite.Require().NoError(err)

	pipeline, err := indicator.NewPipeline(p.Indicators()...)
	suite.Require().NoError(err)

	for i := 0; i < 10; i++ {
		bar := types.Bar{Time: suite.now.Add(time.Duration(i) * time.Minute), Open: 1, High: 1, Low: 1, Close: 1}
		snapshot := pipeline.Ingest(bar)

		if i >= 4 {
			suite.Equal(1.0, snapshot.Value(p.Indicators()[0], indicator.FieldLower))
			suite.Equal(1.0, snapshot.Value(p.Indicators()[0], indicator.FieldUpper))
		}

		d, err := p.Decide(suite.ctx, DecisionContext{Bar: bar, Snapshot: snapshot, Cash: 1000, Sizing: DefaultSizing()})
		suite.Require().NoError(err)
		suite.Equal(types.IntentHold, d.Intent, "bar %d", i)
	}
}

func (suite *PolicyTestSuite) TestStopLossBoundary() {
	bollinger, err := NewBollingerStopLoss(BollingerStopLossParams{BollingerParams: BollingerParams{Period: 20, LowerDev: 2, UpperDev: 2}, StopLoss: 0.05})
	suite.Require().NoError(err)

	ma, err := NewThresholdMA(ThresholdMAParams{MAType: "sma", Period: 20, BuyThreshold: 0.05, SellThreshold: 0.5, StopLoss: 0.05})
	suite.Require().NoError(err)

	bandSnapshot := suite.bandSnapshot(bollinger.Indicators()[0], 80, 120)
	maSnapshot := indicator.NewSnapshot(suite.now, map[string]map[string]float64{
		ma.Indicators()[0].Key(): {indicator.FieldValue: 100},
	})

	policies := []struct {
		name     string
		policy   Policy
		snapshot indicator.Snapshot
	}{
		{name: "bollinger stop loss", policy: bollinger, snapshot: bandSnapshot},
		{name: "threshold ma stop loss", policy: ma, snapshot: maSnapshot},
	}

	for _, tc := range policies {
		suite.Run(tc.name, func() {
			d, err := tc.policy.Decide(suite.ctx, suite.context(94.99, tc.snapshot, suite.long(100)))
			suite.Require().NoError(err)
			suite.Equal(types.IntentExit, d.Intent)
			suite.Equal(types.OrderReasonStopLoss, d.Reason)

			d, err = tc.policy.Decide(suite.ctx, suite.context(95.01, tc.snapshot, suite.long(100)))
			suite.Require().NoError(err)
			suite.Equal(types.IntentHold, d.Intent)
		})
	}
}

func (suite *PolicyTestSuite) newDeadband(trailing float64) *BollingerDeadbandTrailing {
	p, err := NewBollingerDeadbandTrailing(BollingerDeadbandTrailingParams{
		BollingerParams:     BollingerParams{Period: 20, LowerDev: 2, UpperDev: 2},
		StopLoss:            0.05,
		Deadband:            0.02,
		TrailingStopPercent: trailing,
	})
	suite.Require().NoError(err)

	return p
}

func (suite *PolicyTestSuite) TestDeadbandTrailingSequence() {
	p := suite.newDeadband(0.1)
	snapshot := suite.bandSnapshot(p.Indicators()[0], 80, 200)
	position := suite.long(100)

	expected := []struct {
		closePrice float64
		intent     types.Intent
		hwm        float64
	}{
		{closePrice: 101, intent: types.IntentHold, hwm: 100},
		{closePrice: 103, intent: types.IntentHold, hwm: 103},
		{closePrice: 110, intent: types.IntentHold, hwm: 110},
		{closePrice: 99, intent: types.IntentExit, hwm: 110},
	}

	for i, step := range expected {
		d, err := p.Decide(suite.ctx, suite.context(step.closePrice, snapshot, position))
		suite.Require().NoError(err)
		suite.Equal(step.intent, d.Intent, "bar %d", i)

		if d.HighWaterMark.IsSome() {
			position.HighWaterMark = math.Max(position.HighWaterMark, d.HighWaterMark.Unwrap())
		}

		suite.Equal(step.hwm, position.HighWaterMark, "bar %d", i)
	}
}

func (suite *PolicyTestSuite) TestStopLossPrecedence() {
	p := suite.newDeadband(0.1)
	snapshot := suite.bandSnapshot(p.Indicators()[0], 80, 200)

	for _, hwm := range []float64{100, 150, 1000} {
		position := suite.long(100)
		position.HighWaterMark = hwm

		d, err := p.Decide(suite.ctx, suite.context(94, snapshot, position))
		suite.Require().NoError(err)
		suite.Equal(types.IntentExit, d.Intent)
		suite.Equal(types.OrderReasonStopLoss, d.Reason)
	}
}

func (suite *PolicyTestSuite) TestDeadbandNoOp() {
	// A one-tenth-percent trail from the fill price would fire on every dip,
	// but the stop is not armed until a close clears the deadband.
	p := suite.newDeadband(0.001)
	snapshot := suite.bandSnapshot(p.Indicators()[0], 80, 200)

	for _, closePrice := range []float64{95.01, 99.5, 100, 101.9, 102} {
		d, err := p.Decide(suite.ctx, suite.context(closePrice, snapshot, suite.long(100)))
		suite.Require().NoError(err)
		suite.Equal(types.IntentHold, d.Intent, "close %v", closePrice)
		suite.True(d.HighWaterMark.IsNone())
	}
}

func (suite *PolicyTestSuite) TestTrailingStopOnly() {
	p, err := NewTrailingStopOnly(TrailingStopOnlyParams{BollingerParams: BollingerParams{Period: 20, LowerDev: 2, UpperDev: 2}, TrailPercent: 0.1})
	suite.Require().NoError(err)

	snapshot := suite.bandSnapshot(p.Indicators()[0], 90, 110)

	d, err := p.Decide(suite.ctx, suite.context(89, snapshot, types.PositionState{}))
	suite.Require().NoError(err)
	suite.Equal(types.IntentEnter, d.Intent)
	suite.InDelta(1000.0/89.0*0.95, d.Size, 1e-9)

	position := suite.long(100)

	d, err = p.Decide(suite.ctx, suite.context(120, snapshot, position))
	suite.Require().NoError(err)
	suite.Equal(types.IntentHold, d.Intent)
	suite.Equal(120.0, d.HighWaterMark.Unwrap())

	position.HighWaterMark = 120

	d, err = p.Decide(suite.ctx, suite.context(108.01, snapshot, position))
	suite.Require().NoError(err)
	suite.Equal(types.IntentHold, d.Intent)
	suite.True(d.HighWaterMark.IsNone())

	d, err = p.Decide(suite.ctx, suite.context(108, snapshot, position))
	suite.Require().NoError(err)
	suite.Equal(types.IntentExit, d.Intent)
	suite.Equal(types.OrderReasonTrailingStop, d.Reason)
}

func (suite *PolicyTestSuite) TestBollingerBand() {
	p, err := NewBollingerBand(BollingerBandParams{BollingerParams{Period: 20, LowerDev: 0.55, UpperDev: 0.005}})
	suite.Require().NoError(err)

	snapshot := suite.bandSnapshot(p.Indicators()[0], 90, 110)

	tests := []struct {
		name       string
		closePrice float64
		position   types.PositionState
		intent     types.Intent
	}{
		{name: "below lower while flat", closePrice: 89, intent: types.IntentEnter},
		{name: "on lower while flat", closePrice: 90, intent: types.IntentHold},
		{name: "below lower while long", closePrice: 89, position: suite.long(95), intent: types.IntentHold},
		{name: "above upper while long", closePrice: 111, position: suite.long(95), intent: types.IntentExit},
		{name: "on upper while long", closePrice: 110, position: suite.long(95), intent: types.IntentHold},
		{name: "above upper while flat", closePrice: 111, intent: types.IntentHold},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			d, err := p.Decide(suite.ctx, suite.context(tc.closePrice, snapshot, tc.position))
			suite.Require().NoError(err)
			suite.Equal(tc.intent, d.Intent)
		})
	}
}

func (suite *PolicyTestSuite) TestThresholdMA() {
	p, err := NewThresholdMA(ThresholdMAParams{MAType: "ema", Period: 10, BuyThreshold: 0.07, SellThreshold: 0.1})
	suite.Require().NoError(err)
	suite.Equal("ema_10", p.Indicators()[0].Key())

	snapshot := indicator.NewSnapshot(suite.now, map[string]map[string]float64{
		"ema_10": {indicator.FieldValue: 100},
	})

	d, err := p.Decide(suite.ctx, suite.context(92.9, snapshot, types.PositionState{}))
	suite.Require().NoError(err)
	suite.Equal(types.IntentEnter, d.Intent)

	d, err = p.Decide(suite.ctx, suite.context(93.5, snapshot, types.PositionState{}))
	suite.Require().NoError(err)
	suite.Equal(types.IntentHold, d.Intent)

	// No stop-loss configured: a deep loss is held.
	d, err = p.Decide(suite.ctx, suite.context(50, snapshot, suite.long(93)))
	suite.Require().NoError(err)
	suite.Equal(types.IntentHold, d.Intent)

	d, err = p.Decide(suite.ctx, suite.context(102.4, snapshot, suite.long(93)))
	suite.Require().NoError(err)
	suite.Equal(types.IntentExit, d.Intent)
	suite.Equal(types.OrderReasonTakeProfit, d.Reason)
}

func (suite *PolicyTestSuite) TestLaguerreRSIThreshold() {
	p, err := NewLaguerreRSIThreshold(LaguerreRSIThresholdParams{Gamma: 0.5, Period: 6, BuyThreshold: 0.1, SellThreshold: 0.7})
	suite.Require().NoError(err)

	snapshotOf := func(v float64) indicator.Snapshot {
		return indicator.NewSnapshot(suite.now, map[string]map[string]float64{
			p.Indicators()[0].Key(): {indicator.FieldValue: v},
		})
	}

	d, _ := p.Decide(suite.ctx, suite.context(1, snapshotOf(0.05), types.PositionState{}))
	suite.Equal(types.IntentEnter, d.Intent)

	d, _ = p.Decide(suite.ctx, suite.context(1, snapshotOf(0.5), suite.long(1)))
	suite.Equal(types.IntentHold, d.Intent)

	d, _ = p.Decide(suite.ctx, suite.context(1, snapshotOf(0.75), suite.long(1)))
	suite.Equal(types.IntentExit, d.Intent)
}

func (suite *PolicyTestSuite) TestWarmupAlwaysHolds() {
	empty := indicator.NewSnapshot(suite.now, nil)

	bands := BollingerParams{Period: 20, LowerDev: 2, UpperDev: 2}
	ma, _ := NewThresholdMA(defaultThresholdMAParams())
	band, _ := NewBollingerBand(BollingerBandParams{bands})
	stop, _ := NewBollingerStopLoss(BollingerStopLossParams{BollingerParams: bands, StopLoss: 0.05})
	trailing, _ := NewTrailingStopOnly(TrailingStopOnlyParams{BollingerParams: bands, TrailPercent: 0.1})
	lrsi, _ := NewLaguerreRSIThreshold(LaguerreRSIThresholdParams{Gamma: 0.5, Period: 6, BuyThreshold: 0.1, SellThreshold: 0.7})

	for _, p := range []Policy{ma, band, stop, suite.newDeadband(0.1), trailing, lrsi} {
		for _, position := range []types.PositionState{{}, suite.long(100)} {
			// Prices that would trigger every rule if indicators were defined.
			for _, closePrice := range []float64{1, 50, 1000} {
				d, err := p.Decide(suite.ctx, suite.context(closePrice, empty, position))
				suite.Require().NoError(err)
				suite.Equal(types.IntentHold, d.Intent, "%s close %v", p.Name(), closePrice)
				suite.Equal(warmupReason, d.Reason)
			}
		}
	}
}

func (suite *PolicyTestSuite) TestSizing() {
	p, err := NewBollingerBand(BollingerBandParams{BollingerParams{Period: 20, LowerDev: 2, UpperDev: 2}})
	suite.Require().NoError(err)

	snapshot := suite.bandSnapshot(p.Indicators()[0], 90, 110)

	dc := suite.context(80, snapshot, types.PositionState{})
	dc.Sizing = Sizing{SafetyFraction: 0.5}

	d, err := p.Decide(suite.ctx, dc)
	suite.Require().NoError(err)
	suite.Equal(types.IntentEnter, d.Intent)
	suite.InDelta(6.25, d.Size, 1e-12)
	suite.LessOrEqual(d.Size, dc.Cash/dc.Bar.Close*dc.Sizing.SafetyFraction)

	dc.Sizing = Sizing{SafetyFraction: 0.95, MinOrder: 10}
	dc.Cash = 9.99

	d, err = p.Decide(suite.ctx, dc)
	suite.Require().NoError(err)
	suite.Equal(types.IntentHold, d.Intent)

	dc.Cash = 0
	dc.Sizing = DefaultSizing()

	d, err = p.Decide(suite.ctx, dc)
	suite.Require().NoError(err)
	suite.Equal(types.IntentHold, d.Intent)
}

func (suite *PolicyTestSuite) TestVerboseStatus() {
	p, err := NewBollingerBand(BollingerBandParams{BollingerParams{Period: 20, LowerDev: 2, UpperDev: 2}})
	suite.Require().NoError(err)

	snapshot := suite.bandSnapshot(p.Indicators()[0], 90, 110)

	dc := suite.context(100, snapshot, types.PositionState{})
	d, _ := p.Decide(suite.ctx, dc)
	suite.Empty(d.Status)

	dc.Verbose = true
	d, _ = p.Decide(suite.ctx, dc)
	suite.Contains(d.Status, "Waiting BUY")

	dc.Position = suite.long(95)
	d, _ = p.Decide(suite.ctx, dc)
	suite.Contains(d.Status, "Waiting SELL")
	suite.Contains(d.Status, "P/L")
}
