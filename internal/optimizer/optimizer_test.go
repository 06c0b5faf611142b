package optimizer

import (
	"context"
	"math"
	"sync/atomic"
	"testing"
	"time"

	engine "github.com/rxtech-lab/argo-signals/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-signals/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-signals/internal/indicator"
	"github.com/rxtech-lab/argo-signals/internal/policy"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/mocks"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"github.com/stretchr/testify/suite"
)

// buyOnce enters with a fixed size on the first flat bar and never exits.
type buyOnce struct {
	size float64
}

func (p *buyOnce) Name() string                 { return "buy_once" }
func (p *buyOnce) Indicators() []indicator.Spec { return nil }
func (p *buyOnce) Parameters() map[string]any   { return map[string]any{"size": p.size} }

func (p *buyOnce) Decide(_ context.Context, dc policy.DecisionContext) (types.Decision, error) {
	if dc.Position.IsOpen {
		return types.Hold("holding"), nil
	}

	return types.Enter(p.size, "enter"), nil
}

func buyOnceFactory(params map[string]any) (policy.Policy, error) {
	size, ok := params["size"].(float64)
	if !ok || size < 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "invalid size %v", params["size"])
	}

	return &buyOnce{size: size}, nil
}

// brokenIndicators panics while the driver builds its pipeline.
type brokenIndicators struct {
	buyOnce
}

func (p *brokenIndicators) Indicators() []indicator.Spec { panic("indicator table corrupted") }

type OptimizerTestSuite struct {
	suite.Suite
	ctx    context.Context
	config engine.BacktestEngineV1Config
	start  time.Time
}

func TestOptimizerSuite(t *testing.T) {
	suite.Run(t, new(OptimizerTestSuite))
}

func (suite *OptimizerTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.config = engine.EmptyConfig()
	suite.config.InitialCapital = 1000
	suite.config.Broker = commission_fee.BrokerZero
	suite.start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
}

func (suite *OptimizerTestSuite) newOptimizer(opts ...Option) *Optimizer {
	o, err := New(suite.config, buyOnceFactory, opts...)
	suite.Require().NoError(err)

	return o
}

func (suite *OptimizerTestSuite) TestCombinations() {
	combinations, err := Combinations(ParameterGrid{
		"b": {1, 2},
		"a": {"x", "y"},
	})
	suite.Require().NoError(err)

	suite.Equal([]map[string]any{
		{"a": "x", "b": 1},
		{"a": "x", "b": 2},
		{"a": "y", "b": 1},
		{"a": "y", "b": 2},
	}, combinations)
}

func (suite *OptimizerTestSuite) TestMalformedGrid() {
	for _, grid := range []ParameterGrid{nil, {}, {"period": {}}} {
		_, err := Combinations(grid)
		suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameterGrid))
		suite.True(errors.IsConfigurationError(err))

		_, err = suite.newOptimizer().Optimize(suite.ctx, grid, mocks.BarsFromCloses(suite.start, time.Minute, 100))
		suite.True(errors.IsConfigurationError(err))
	}

	_, err := suite.newOptimizer().Optimize(suite.ctx, ParameterGrid{"size": {1.0}}, nil)
	suite.True(errors.HasCode(err, errors.ErrCodeEmptyDataFeed))
}

func (suite *OptimizerTestSuite) TestNewErrors() {
	_, err := New(suite.config, nil)
	suite.True(errors.HasCode(err, errors.ErrCodeMissingParameter))

	invalid := suite.config
	invalid.InitialCapital = 0
	_, err = New(invalid, buyOnceFactory)
	suite.True(errors.IsConfigurationError(err))
}

func (suite *OptimizerTestSuite) TestArgMax() {
	bars := mocks.BarsFromCloses(suite.start, time.Minute, 100, 100, 110, 120)

	var calls atomic.Int32

	o := suite.newOptimizer(WithWorkers(4), WithOnCombinationDone(func(done int, total int, _ types.RunResult) {
		calls.Add(1)
		suite.Equal(3, total)
		suite.LessOrEqual(done, total)
	}))

	report, err := o.Optimize(suite.ctx, ParameterGrid{"size": {1.0, 5.0, 3.0}}, bars)
	suite.Require().NoError(err)

	suite.Require().Len(report.Results, 3)
	suite.InDelta(1020.0, report.Results[0].TerminalPortfolioValue, 1e-9)
	suite.InDelta(1100.0, report.Results[1].TerminalPortfolioValue, 1e-9)
	suite.InDelta(1060.0, report.Results[2].TerminalPortfolioValue, 1e-9)

	suite.Equal(5.0, report.Best.Parameters["size"])
	suite.Equal(report.Best.TerminalPortfolioValue, report.Final.TerminalPortfolioValue)
	suite.Equal(report.Best.Position, report.Final.Position)
	suite.Equal(int32(3), calls.Load())
}

func (suite *OptimizerTestSuite) TestFirstSeenWinsTies() {
	bars := mocks.BarsFromCloses(suite.start, time.Minute, 100, 100, 100)

	report, err := suite.newOptimizer().Optimize(suite.ctx, ParameterGrid{"size": {2.0, 1.0}}, bars)
	suite.Require().NoError(err)

	suite.Equal(report.Results[0].TerminalPortfolioValue, report.Results[1].TerminalPortfolioValue)
	suite.Equal(2.0, report.Best.Parameters["size"])
}

func (suite *OptimizerTestSuite) TestFailedCombinationScoresNegativeInfinity() {
	bars := mocks.BarsFromCloses(suite.start, time.Minute, 100, 100, 110)

	report, err := suite.newOptimizer().Optimize(suite.ctx, ParameterGrid{"size": {-1.0, 2.0}}, bars)
	suite.Require().NoError(err)

	suite.True(math.IsInf(report.Results[0].TerminalPortfolioValue, -1))
	suite.True(errors.HasCode(report.Results[0].Err, errors.ErrCodeInvalidParameter))
	suite.Equal(2.0, report.Best.Parameters["size"])
}

func (suite *OptimizerTestSuite) TestPanickingCombinationScoresNegativeInfinity() {
	bars := mocks.BarsFromCloses(suite.start, time.Minute, 100, 100, 110)

	factory := func(params map[string]any) (policy.Policy, error) {
		switch params["size"] {
		case 3.0:
			return &brokenIndicators{buyOnce{size: 3}}, nil
		case 4.0:
			panic("factory exploded")
		}

		return buyOnceFactory(params)
	}

	o, err := New(suite.config, factory, WithWorkers(2))
	suite.Require().NoError(err)

	report, err := o.Optimize(suite.ctx, ParameterGrid{"size": {1.0, 3.0, 4.0, 2.0}}, bars)
	suite.Require().NoError(err)
	suite.Require().Len(report.Results, 4)

	for _, i := range []int{1, 2} {
		suite.True(math.IsInf(report.Results[i].TerminalPortfolioValue, -1))
		suite.True(errors.HasCode(report.Results[i].Err, errors.ErrCodeBacktestRunFailed))
		suite.Contains(report.Results[i].Err.Error(), "combination panicked")
	}

	suite.Equal("buy_once", report.Results[1].Policy)
	suite.InDelta(1020.0, report.Results[3].TerminalPortfolioValue, 1e-9)
	suite.Equal(2.0, report.Best.Parameters["size"])
}

func (suite *OptimizerTestSuite) TestEveryCombinationFails() {
	bars := mocks.BarsFromCloses(suite.start, time.Minute, 100, 101)

	report, err := suite.newOptimizer().Optimize(suite.ctx, ParameterGrid{"size": {-1.0, "x"}}, bars)
	suite.True(errors.HasCode(err, errors.ErrCodeBacktestRunFailed))
	suite.Len(report.Results, 2)
}

func (suite *OptimizerTestSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(suite.ctx)
	cancel()

	_, err := suite.newOptimizer().Optimize(ctx, ParameterGrid{"size": {1.0, 2.0}}, mocks.BarsFromCloses(suite.start, time.Minute, 100, 101))
	suite.ErrorIs(err, context.Canceled)
}

func (suite *OptimizerTestSuite) TestBollingerGridRerunIsExact() {
	gen := mocks.NewDataGenerator(11)
	genConfig := mocks.DefaultConfig()
	genConfig.Count = 800
	genConfig.Volatility = 0.01
	bars := gen.Generate(genConfig)

	config := engine.EmptyConfig()
	config.InitialCapital = 10000

	factory := PolicyFactoryFor(policy.KindBollingerStopLoss, map[string]any{"period": 20}, policy.Dependencies{})

	o, err := New(config, factory, WithWorkers(3))
	suite.Require().NoError(err)

	report, err := o.Optimize(suite.ctx, ParameterGrid{
		"stop_loss": {0.03, 0.05, 0.07},
		"lower_dev": {1.5, 2.0},
	}, bars)
	suite.Require().NoError(err)
	suite.Require().Len(report.Results, 6)

	best := math.Inf(-1)
	for _, r := range report.Results {
		suite.NoError(r.Err)
		best = math.Max(best, r.TerminalPortfolioValue)
	}

	suite.Equal(best, report.Best.TerminalPortfolioValue)
	suite.Equal(report.Best.TerminalPortfolioValue, report.Final.TerminalPortfolioValue)
	suite.Equal(report.Best.TradeLog, report.Final.TradeLog)
	suite.Equal(report.Best.Parameters, report.Final.Parameters)
}

func (suite *OptimizerTestSuite) TestPolicyFactoryForMergesParameters() {
	base := map[string]any{"period": 30, "stop_loss": 0.05}
	factory := PolicyFactoryFor(policy.KindBollingerStopLoss, base, policy.Dependencies{})

	p, err := factory(map[string]any{"stop_loss": 0.02})
	suite.Require().NoError(err)
	suite.Equal(policy.KindBollingerStopLoss, policy.Kind(p.Name()))
	suite.Equal(0.05, base["stop_loss"])
}
