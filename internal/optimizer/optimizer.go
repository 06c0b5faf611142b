// Package optimizer runs a policy over every combination of a parameter grid
// and selects the combination with the highest terminal portfolio value.
package optimizer

import (
	"context"
	"math"
	"runtime"
	"sort"
	"sync"

	engine "github.com/rxtech-lab/argo-signals/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-signals/internal/logger"
	"github.com/rxtech-lab/argo-signals/internal/policy"
	"github.com/rxtech-lab/argo-signals/internal/trading"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ParameterGrid maps a parameter name to its candidate values.
type ParameterGrid map[string][]any

// PolicyFactory builds a fresh policy for one combination.
type PolicyFactory func(params map[string]any) (policy.Policy, error)

// BrokerFactory builds a fresh broker for one run.
type BrokerFactory func() trading.Broker

// OnCombinationDoneCallback is called after each combination finishes, from
// the worker that ran it.
type OnCombinationDoneCallback func(done int, total int, result types.RunResult)

// Report is the outcome of a grid search.
type Report struct {
	// Best is the first combination with the highest terminal value.
	Best types.RunResult `yaml:"best" json:"best"`
	// Results holds one entry per combination, in enumeration order.
	Results []types.RunResult `yaml:"results" json:"results"`
	// Final is the verbose rerun of the best parameters.
	Final types.RunResult `yaml:"final" json:"final"`
}

type Optimizer struct {
	config            engine.BacktestEngineV1Config
	newPolicy         PolicyFactory
	newBroker         BrokerFactory
	log               *logger.Logger
	workers           int
	onCombinationDone OnCombinationDoneCallback
}

type Option func(*Optimizer)

// WithWorkers bounds how many combinations run at once.
func WithWorkers(workers int) Option {
	return func(o *Optimizer) {
		o.workers = workers
	}
}

// WithBrokerFactory replaces the simulated broker built from the config.
func WithBrokerFactory(factory BrokerFactory) Option {
	return func(o *Optimizer) {
		o.newBroker = factory
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(o *Optimizer) {
		o.log = log
	}
}

func WithOnCombinationDone(callback OnCombinationDoneCallback) Option {
	return func(o *Optimizer) {
		o.onCombinationDone = callback
	}
}

func New(config engine.BacktestEngineV1Config, newPolicy PolicyFactory, opts ...Option) (*Optimizer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if newPolicy == nil {
		return nil, errors.New(errors.ErrCodeMissingParameter, "policy factory is required")
	}

	o := &Optimizer{
		config:    config,
		newPolicy: newPolicy,
		log:       logger.NewNopLogger(),
		workers:   runtime.NumCPU(),
	}

	o.newBroker = func() trading.Broker {
		return engine.NewSimulatedBrokerFromConfig(o.config)
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.workers < 1 {
		o.workers = 1
	}

	return o, nil
}

// PolicyFactoryFor builds policies of kind. Combination values override the
// base parameters of the same name.
func PolicyFactoryFor(kind policy.Kind, base map[string]any, deps policy.Dependencies) PolicyFactory {
	return func(params map[string]any) (policy.Policy, error) {
		return policy.New(kind, lo.Assign(base, params), deps)
	}
}

// Optimize runs every combination of grid over bars. Failed combinations
// score -Inf and do not stop the search. The best combination is then run
// once more with verbose output.
func (o *Optimizer) Optimize(ctx context.Context, grid ParameterGrid, bars []types.Bar) (Report, error) {
	combinations, err := Combinations(grid)
	if err != nil {
		return Report{}, err
	}

	if err := engine.ValidateBars(bars); err != nil {
		return Report{}, err
	}

	o.log.Info("Starting grid search",
		zap.Int("combinations", len(combinations)),
		zap.Int("workers", o.workers),
		zap.Int("bars", len(bars)),
	)

	quiet := o.config
	quiet.Verbose = false

	results := make([]types.RunResult, len(combinations))

	var (
		mu   sync.Mutex
		done int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)

	for i, params := range combinations {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			results[i] = o.run(gctx, quiet, logger.NewNopLogger(), params, bars)

			if o.onCombinationDone != nil {
				mu.Lock()
				done++
				o.onCombinationDone(done, len(combinations), results[i])
				mu.Unlock()
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Report{Results: results}, err
	}

	if err := ctx.Err(); err != nil {
		return Report{Results: results}, err
	}

	report := Report{Results: results, Best: Best(results)}

	if math.IsInf(report.Best.TerminalPortfolioValue, -1) {
		return report, errors.Wrap(errors.ErrCodeBacktestRunFailed, "every combination failed", report.Best.Err)
	}

	o.log.Info("Best combination found",
		zap.Any("parameters", report.Best.Parameters),
		zap.Float64("terminal_portfolio_value", report.Best.TerminalPortfolioValue),
	)

	verbose := o.config
	verbose.Verbose = true

	report.Final = o.run(ctx, verbose, o.log, report.Best.Parameters, bars)
	if report.Final.Err != nil {
		return report, errors.Wrap(errors.ErrCodeBacktestRunFailed, "verbose rerun of the best combination failed", report.Final.Err)
	}

	return report, nil
}

// run executes one combination with a fresh policy, broker and driver. A
// panic anywhere in the combination is recorded as a failed result.
func (o *Optimizer) run(ctx context.Context, config engine.BacktestEngineV1Config, log *logger.Logger, params map[string]any, bars []types.Bar) (result types.RunResult) {
	name := ""

	defer func() {
		if r := recover(); r != nil {
			log.Error("Combination panicked", zap.Any("parameters", params), zap.Any("panic", r))
			result = types.FailedRunResult(name, params, errors.Newf(errors.ErrCodeBacktestRunFailed, "combination panicked: %v", r))
		}
	}()

	p, err := o.newPolicy(params)
	if err != nil {
		return types.FailedRunResult(name, params, err)
	}

	name = p.Name()

	driver, err := engine.NewBacktestEngineV1(config, p, o.newBroker(), log)
	if err != nil {
		return types.FailedRunResult(name, params, err)
	}

	result, err = driver.Run(ctx, bars)
	if err != nil {
		return types.FailedRunResult(name, params, err)
	}

	// keep the combination as given so the rerun decodes the same values
	result.Parameters = params

	return result
}

// Best returns the first result with the highest terminal value.
func Best(results []types.RunResult) types.RunResult {
	best := types.FailedRunResult("", nil, errors.New(errors.ErrCodeBacktestRunFailed, "no results"))

	for i, r := range results {
		if i == 0 || r.Better(best) {
			best = r
		}
	}

	return best
}

// Combinations enumerates the cartesian product of grid. Keys are iterated in
// sorted order with the first key varying slowest, so the order is stable.
func Combinations(grid ParameterGrid) ([]map[string]any, error) {
	if len(grid) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidParameterGrid, "parameter grid is empty")
	}

	keys := lo.Keys(grid)
	sort.Strings(keys)

	combinations := []map[string]any{{}}

	for _, key := range keys {
		values := grid[key]
		if len(values) == 0 {
			return nil, errors.Newf(errors.ErrCodeInvalidParameterGrid, "parameter %q has no values", key)
		}

		combinations = lo.FlatMap(combinations, func(partial map[string]any, _ int) []map[string]any {
			return lo.Map(values, func(value any, _ int) map[string]any {
				return lo.Assign(partial, map[string]any{key: value})
			})
		})
	}

	return combinations, nil
}
