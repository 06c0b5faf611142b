package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rxtech-lab/argo-signals/internal/backtest/engine"
	enginev1 "github.com/rxtech-lab/argo-signals/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-signals/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-signals/internal/backtest/engine/engine_v1/writers"
	"github.com/rxtech-lab/argo-signals/internal/logger"
	"github.com/rxtech-lab/argo-signals/internal/optimizer"
	"github.com/rxtech-lab/argo-signals/internal/policy"
	"github.com/rxtech-lab/argo-signals/internal/scoring"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/internal/version"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"github.com/rxtech-lab/argo-signals/pkg/strategy"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// session is everything a run or an optimization needs, loaded from the flags.
type session struct {
	log      *logger.Logger
	config   enginev1.BacktestEngineV1Config
	strategy strategy.File
	bars     []types.Bar
	deps     policy.Dependencies
	closers  []func()
}

func (s *session) Close() {
	for _, closeFn := range s.closers {
		closeFn()
	}

	_ = s.log.Sync()
}

func loadSession(cmd *cli.Command) (*session, error) {
	level, err := zapcore.ParseLevel(cmd.String("log-level"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid log level", err)
	}

	log, err := logger.NewLoggerWithLevel(level)
	if err != nil {
		return nil, err
	}

	s := &session{log: log}

	s.config, err = enginev1.LoadConfig(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	s.strategy, err = strategy.Load(cmd.String("strategy"))
	if err != nil {
		return nil, err
	}

	s.bars, err = loadBars(cmd.String("data"), s.config, log)
	if err != nil {
		return nil, err
	}

	if err := s.loadScoreProvider(cmd); err != nil {
		s.Close()

		return nil, err
	}

	log.Info("Loaded backtest inputs",
		zap.String("policy", s.strategy.Policy),
		zap.String("data", cmd.String("data")),
		zap.Int("bars", len(s.bars)),
	)

	return s, nil
}

// loadBars reads a folder of CSV files or a single CSV file with gocsv, and
// anything else through DuckDB.
func loadBars(path string, config enginev1.BacktestEngineV1Config, log *logger.Logger) ([]types.Bar, error) {
	var ds datasource.DataSource

	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to open %s", path)
	}

	if info.IsDir() || strings.EqualFold(filepath.Ext(path), ".csv") {
		ds = datasource.NewCSVDataSource(config.WarmupBars, log)
	} else {
		ds, err = datasource.NewDataSource("", config.WarmupBars, log)
		if err != nil {
			return nil, err
		}
	}

	defer ds.Close()

	if err := ds.Initialize(path); err != nil {
		return nil, err
	}

	return datasource.Collect(ds, config.StartTime, config.EndTime)
}

func (s *session) loadScoreProvider(cmd *cli.Command) error {
	switch {
	case cmd.String("onnx-model") != "":
		provider, err := scoring.NewONNXProvider(scoring.ONNXConfig{
			ModelPath:    cmd.String("onnx-model"),
			LibraryPath:  cmd.String("onnx-library"),
			FeatureCount: int(cmd.Int("onnx-features")),
		})
		if err != nil {
			return err
		}

		s.deps.ScoreProvider = provider
		s.closers = append(s.closers, provider.Close)
	case cmd.String("score-csv") != "":
		provider, err := scoring.NewCSVScoreProvider(cmd.String("score-csv"))
		if err != nil {
			return err
		}

		s.log.Debug("Loaded precomputed scores", zap.Int("scores", provider.Len()))
		s.deps.ScoreProvider = provider
	}

	return nil
}

func (s *session) resultFolder(cmd *cli.Command) string {
	return enginev1.ResultFolder(cmd.String("results"), s.strategy.Policy, cmd.String("strategy"), cmd.String("data"), s.config)
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	p, err := policy.New(policy.Kind(s.strategy.Policy), s.strategy.Parameters, s.deps)
	if err != nil {
		return err
	}

	bar := progressbar.Default(int64(len(s.bars)), "Backtesting")
	onProcessData := engine.OnProcessDataCallback(func(_ int, _ int) error {
		return bar.Add(1)
	})

	driver, err := enginev1.NewBacktestEngineV1(s.config, p, enginev1.NewSimulatedBrokerFromConfig(s.config), s.log,
		enginev1.WithCallbacks(engine.LifecycleCallbacks{OnProcessData: &onProcessData}))
	if err != nil {
		return err
	}

	result, err := driver.Run(ctx, s.bars)
	_ = bar.Finish()

	if err != nil {
		return err
	}

	folder := s.resultFolder(cmd)
	if err := writers.WriteRunResult(folder, result, cmd.String("data")); err != nil {
		return err
	}

	printResult(result, folder)

	return nil
}

func optimizeAction(ctx context.Context, cmd *cli.Command) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if len(s.strategy.Grid) == 0 {
		return errors.Newf(errors.ErrCodeInvalidParameterGrid, "strategy file %s has no grid", cmd.String("strategy"))
	}

	total := 1
	for _, values := range s.strategy.Grid {
		total *= len(values)
	}

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription(fmt.Sprintf("Optimizing %s", s.strategy.Policy)),
		progressbar.OptionShowCount(),
	)

	opts := []optimizer.Option{
		optimizer.WithLogger(s.log),
		optimizer.WithOnCombinationDone(func(_ int, _ int, result types.RunResult) {
			if result.Err != nil {
				s.log.Warn("Combination failed", zap.Any("parameters", result.Parameters), zap.Error(result.Err))
			}

			_ = bar.Add(1)
		}),
	}

	if workers := int(cmd.Int("workers")); workers > 0 {
		opts = append(opts, optimizer.WithWorkers(workers))
	}

	newPolicy := optimizer.PolicyFactoryFor(policy.Kind(s.strategy.Policy), s.strategy.Parameters, s.deps)

	opt, err := optimizer.New(s.config, newPolicy, opts...)
	if err != nil {
		return err
	}

	report, err := opt.Optimize(ctx, optimizer.ParameterGrid(s.strategy.Grid), s.bars)
	_ = bar.Finish()

	if err != nil {
		return err
	}

	folder := s.resultFolder(cmd)
	if err := writers.WriteRunResult(folder, report.Final, cmd.String("data")); err != nil {
		return err
	}

	if err := writers.WriteRuns(folder, report.Results); err != nil {
		return err
	}

	printResult(report.Final, folder)

	return nil
}

func schemaAction(_ context.Context, cmd *cli.Command) error {
	var (
		schema string
		err    error
	)

	if kind := cmd.String("policy"); kind != "" {
		schema, err = policy.Schema(policy.Kind(kind))
	} else {
		config := enginev1.EmptyConfig()
		schema, err = config.GenerateSchemaJSON()
	}

	if err != nil {
		return err
	}

	fmt.Println(schema)

	return nil
}

func versionAction(_ context.Context, _ *cli.Command) error {
	fmt.Println(version.GetVersion())

	return nil
}

func printResult(result types.RunResult, folder string) {
	fmt.Printf("\nPolicy:            %s\n", result.Policy)
	fmt.Printf("Parameters:        %v\n", result.Parameters)
	fmt.Printf("Terminal value:    %.2f\n", result.TerminalPortfolioValue)
	fmt.Printf("Trades:            %d\n", len(result.TradeLog))
	fmt.Printf("Total fees:        %.2f\n", result.Stats.TotalFees)
	fmt.Printf("Buy and hold PnL:  %.2f\n", result.Stats.BuyAndHoldPnl)
	fmt.Printf("Stale bars:        %d\n", result.StaleBarsSkipped)
	fmt.Printf("Malformed bars:    %d\n", result.MalformedBarsSkipped)
	fmt.Printf("Results written to %s\n", folder)
}
