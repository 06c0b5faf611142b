package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-signals/internal/backtest/engine"
	"github.com/rxtech-lab/argo-signals/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-signals/internal/indicator"
	"github.com/rxtech-lab/argo-signals/internal/logger"
	"github.com/rxtech-lab/argo-signals/internal/marker"
	"github.com/rxtech-lab/argo-signals/internal/policy"
	"github.com/rxtech-lab/argo-signals/internal/trading"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BacktestEngineV1 is the execution driver. It feeds bars one at a time
// through the indicator pipeline, the policy, the order lifecycle and the
// broker. A driver holds no state between runs; every Run starts from a
// fresh pipeline, lifecycle and journal.
type BacktestEngineV1 struct {
	config    BacktestEngineV1Config
	policy    policy.Policy
	broker    trading.Broker
	log       *logger.Logger
	callbacks engine.LifecycleCallbacks
	now       func() time.Time
}

type Option func(*BacktestEngineV1)

// WithCallbacks sets the lifecycle callbacks fired during Run.
func WithCallbacks(callbacks engine.LifecycleCallbacks) Option {
	return func(b *BacktestEngineV1) {
		b.callbacks = callbacks
	}
}

// WithClock replaces the wall clock used by the live-lag filter.
func WithClock(now func() time.Time) Option {
	return func(b *BacktestEngineV1) {
		b.now = now
	}
}

func NewBacktestEngineV1(config BacktestEngineV1Config, p policy.Policy, broker trading.Broker, log *logger.Logger, opts ...Option) (*BacktestEngineV1, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if p == nil {
		return nil, errors.New(errors.ErrCodeMissingParameter, "policy is required")
	}

	if broker == nil {
		return nil, errors.New(errors.ErrCodeMissingParameter, "broker is required")
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	if config.Broker == commission_fee.BrokerPercentage {
		broker.SetCommission(config.CommissionRate)
	}

	b := &BacktestEngineV1{
		config: config,
		policy: p,
		broker: broker,
		log:    log,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b, nil
}

// NewSimulatedBrokerFromConfig builds the simulated broker described by config.
func NewSimulatedBrokerFromConfig(config BacktestEngineV1Config) *SimulatedBroker {
	return NewSimulatedBroker(
		config.InitialCapital,
		commission_fee.GetCommissionFeeHandler(config.Broker, config.CommissionRate),
		config.DecimalPrecision,
	)
}

// backtestRun is the per-run state of the driver.
type backtestRun struct {
	id        string
	pipeline  *indicator.Pipeline
	lifecycle *Lifecycle
	marker    marker.Marker
	stale     int
	malformed int
}

// Run implements engine.Engine.
func (b *BacktestEngineV1) Run(ctx context.Context, bars []types.Bar) (result types.RunResult, err error) {
	if err := ValidateBars(bars); err != nil {
		return types.RunResult{}, err
	}

	pipeline, err := indicator.NewPipeline(b.policy.Indicators()...)
	if err != nil {
		return types.RunResult{}, err
	}

	run := &backtestRun{
		id:        uuid.New().String(),
		pipeline:  pipeline,
		lifecycle: NewLifecycle(),
		marker:    NewBacktestMarker(),
	}

	result = types.RunResult{
		ID:         run.id,
		Policy:     b.policy.Name(),
		Parameters: b.policy.Parameters(),
	}

	if err := b.callbacks.RunStart(run.id, b.policy.Name(), len(bars)); err != nil {
		return result, err
	}

	defer func() {
		b.callbacks.RunEnd(result, err)
	}()

	b.log.Debug("Run started",
		zap.String("run_id", run.id),
		zap.String("policy", b.policy.Name()),
		zap.Int("bars", len(bars)),
	)

	for i, bar := range bars {
		if err := ctx.Err(); err != nil {
			return b.collect(run, bars[:i], result), err
		}

		if err := b.step(ctx, run, bar); err != nil {
			return b.collect(run, bars[:i+1], result), err
		}

		if err := b.callbacks.ProcessData(i+1, len(bars)); err != nil {
			return b.collect(run, bars[:i+1], result), err
		}
	}

	result = b.collect(run, bars, result)

	b.log.Debug("Run finished",
		zap.String("run_id", run.id),
		zap.Float64("terminal_portfolio_value", result.TerminalPortfolioValue),
		zap.Int("trades", len(result.TradeLog)),
		zap.Int("stale_bars_skipped", result.StaleBarsSkipped),
		zap.Int("malformed_bars_skipped", result.MalformedBarsSkipped),
	)

	return result, nil
}

// step processes one bar. Only errors that must abort the run are returned.
func (b *BacktestEngineV1) step(ctx context.Context, run *backtestRun, bar types.Bar) error {
	// A malformed bar never reaches the broker or the indicators.
	if err := bar.Validate(); err != nil {
		b.log.Warn("Skipping malformed bar",
			zap.Time("bar_time", bar.Time),
			zap.Error(err),
		)
		run.malformed++

		return nil
	}

	if barAware, ok := b.broker.(trading.BarAware); ok {
		if err := barAware.UpdateCurrentMarketData(bar); err != nil {
			return errors.Wrapf(errors.ErrCodeBacktestRunFailed, err, "broker rejected bar at %s", bar.Time)
		}
	}

	snapshot := run.pipeline.Ingest(bar)

	if b.config.TradeOnLive {
		lag := b.now().Sub(bar.Time)
		if lag > time.Duration(b.config.LiveLagSeconds)*time.Second {
			b.log.Warn("Skipping stale bar",
				zap.Time("bar_time", bar.Time),
				zap.Duration("lag", lag),
			)
			run.marker.MarkStale(bar, lag.Seconds())
			run.stale++

			return nil
		}
	}

	if pending, err := run.lifecycle.PendingOrder().Take(); err == nil {
		// When the poll fails the order stays pending and the policy still
		// runs, so any non-HOLD decision is a protocol violation.
		order, err := b.broker.Poll(ctx, pending.OrderID)
		if err != nil {
			b.log.Warn("Failed to poll pending order",
				zap.String("order_id", pending.OrderID),
				zap.Time("bar_time", bar.Time),
				zap.Error(err),
			)
		} else {
			if err := run.lifecycle.Resolve(order); err != nil {
				return err
			}

			if order.Status == types.OrderStatusPending {
				return nil
			}

			b.onResolved(run, bar, order)
		}
	}

	decision := b.decide(ctx, policy.DecisionContext{
		Bar:      bar,
		Snapshot: snapshot,
		Position: run.lifecycle.Position(),
		Cash:     b.broker.Cash(),
		Sizing: policy.Sizing{
			SafetyFraction: b.config.SafetyFraction,
			MinOrder:       b.config.MinOrder,
		},
		Verbose: b.config.Verbose,
	})

	if hwm, err := decision.HighWaterMark.Take(); err == nil {
		run.lifecycle.MarkHighWater(hwm)
	}

	b.logStatus(bar, decision)

	if decision.Intent == types.IntentHold {
		return nil
	}

	order, err := run.lifecycle.Submit(ctx, b.broker, decision, bar)
	if err != nil {
		if b.config.Mode == ModeSimulation {
			return err
		}

		b.log.Warn("Skipping decision",
			zap.Time("bar_time", bar.Time),
			zap.String("intent", string(decision.Intent)),
			zap.Error(err),
		)
		run.marker.MarkSkip(bar, decision, err.Error())

		return nil
	}

	submitted, err := order.Take()
	if err != nil {
		return nil
	}

	run.marker.MarkDecision(bar, decision)

	if submitted.Status.IsTerminal() {
		b.onResolved(run, bar, submitted)
	}

	return nil
}

// decide asks the policy for a decision. Errors and panics become HOLD.
func (b *BacktestEngineV1) decide(ctx context.Context, dc policy.DecisionContext) (decision types.Decision) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("Policy panicked",
				zap.Time("bar_time", dc.Bar.Time),
				zap.Any("panic", r),
			)

			decision = types.Hold(fmt.Sprintf("policy panicked: %v", r))
		}
	}()

	decision, err := b.policy.Decide(ctx, dc)
	if err != nil {
		b.log.Warn("Policy failed, holding",
			zap.Time("bar_time", dc.Bar.Time),
			zap.Error(err),
		)

		return types.Hold(err.Error())
	}

	return decision
}

func (b *BacktestEngineV1) onResolved(run *backtestRun, bar types.Bar, order types.Order) {
	switch order.Status {
	case types.OrderStatusFilled:
		b.log.Info("Order filled",
			zap.String("order_id", order.OrderID),
			zap.String("side", string(order.Side)),
			zap.Float64("size", order.RequestedSize),
			zap.Float64("price", order.FillPrice.TakeOr(0)),
			zap.Float64("fee", order.Fee),
			zap.Time("bar_time", bar.Time),
		)
		run.marker.MarkFill(bar, order)
		b.callbacks.OrderFilled(order)
	default:
		b.log.Warn("Order not filled",
			zap.String("order_id", order.OrderID),
			zap.String("side", string(order.Side)),
			zap.String("status", string(order.Status)),
			zap.String("reason", order.Reason),
			zap.Time("bar_time", bar.Time),
		)
		run.marker.MarkCancel(bar, order)
	}
}

func (b *BacktestEngineV1) logStatus(bar types.Bar, decision types.Decision) {
	fields := []zap.Field{
		zap.Time("bar_time", bar.Time),
		zap.Float64("close", bar.Close),
		zap.String("intent", string(decision.Intent)),
		zap.String("reason", decision.Reason),
	}

	if b.config.Verbose {
		status := decision.Status
		if status == "" {
			status = "Bar processed"
		}

		b.log.Info(status, fields...)

		return
	}

	b.log.Debug("Bar processed", fields...)
}

// collect builds the result from the bars processed so far.
func (b *BacktestEngineV1) collect(run *backtestRun, processed []types.Bar, result types.RunResult) types.RunResult {
	position := run.lifecycle.Position()
	cash := b.broker.Cash()

	result.Cash = cash
	result.Position = position
	result.TradeLog = run.lifecycle.TradeLog()
	result.Orders = run.lifecycle.Orders()
	result.Marks = run.marker.GetMarks()
	result.BarsProcessed = len(processed)
	result.StaleBarsSkipped = run.stale
	result.MalformedBarsSkipped = run.malformed
	result.TerminalPortfolioValue = cash

	valid := lo.Filter(processed, func(bar types.Bar, _ int) bool {
		return bar.Validate() == nil
	})
	if len(valid) == 0 {
		return result
	}

	firstClose := valid[0].Close
	lastClose := valid[len(valid)-1].Close

	terminal := decimal.NewFromFloat(cash)
	if position.IsOpen {
		terminal = terminal.Add(decimal.NewFromFloat(position.Size).Mul(decimal.NewFromFloat(lastClose)))
	}

	result.TerminalPortfolioValue = terminal.InexactFloat64()

	stats := types.CalculateTradeStats(result.TradeLog, position, b.config.InitialCapital, firstClose, lastClose)
	stats.ID = result.ID
	stats.Timestamp = b.now()
	stats.Policy = result.Policy
	stats.Parameters = result.Parameters
	stats.TerminalPortfolioValue = result.TerminalPortfolioValue
	stats.StaleBarsSkipped = result.StaleBarsSkipped
	result.Stats = stats

	return result
}

func (b *BacktestEngineV1) GetConfigSchema() (string, error) {
	config := b.config

	schema, err := config.GenerateSchemaJSON()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to generate schema", err)
	}

	return schema, nil
}

// ValidateBars checks that bars is non-empty and strictly increasing in time.
func ValidateBars(bars []types.Bar) error {
	if len(bars) == 0 {
		return errors.New(errors.ErrCodeEmptyDataFeed, "no bars to process")
	}

	for i := 1; i < len(bars); i++ {
		if !bars[i].Time.After(bars[i-1].Time) {
			return errors.Newf(errors.ErrCodeDataOutOfOrder,
				"bar %d at %s does not follow %s", i, bars[i].Time, bars[i-1].Time)
		}
	}

	return nil
}

var _ engine.Engine = (*BacktestEngineV1)(nil)
