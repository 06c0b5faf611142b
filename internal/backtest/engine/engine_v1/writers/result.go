package writers

import (
	"os"
	"path/filepath"

	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

const (
	TradesFile = "trades.parquet"
	OrdersFile = "orders.parquet"
	MarksFile  = "marks.parquet"
	StatsFile  = "stats.yaml"
	RunsFile   = "runs.parquet"
)

type parquetWriter interface {
	Initialize() error
	Close() error
}

// WriteRunResult writes the trades, orders, marks and stats of one run into
// folder, replacing any previous result there.
func WriteRunResult(folder string, result types.RunResult, dataPath string) error {
	if err := os.RemoveAll(folder); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to clean result folder", err)
	}

	trades := NewTradesWriter(filepath.Join(folder, TradesFile))
	orders := NewOrdersWriter(filepath.Join(folder, OrdersFile))
	marks := NewMarksWriter(filepath.Join(folder, MarksFile))

	writes := []struct {
		writer parquetWriter
		write  func() error
	}{
		{trades, func() error { return trades.Write(result.TradeLog...) }},
		{orders, func() error { return orders.Write(result.Orders...) }},
		{marks, func() error { return marks.Write(result.Marks...) }},
	}

	for _, w := range writes {
		if err := writeAndClose(w.writer, w.write); err != nil {
			return err
		}
	}

	stats := result.Stats
	stats.TradesFilePath = trades.GetOutputPath()
	stats.DataPath = dataPath

	return types.WriteTradeStats(filepath.Join(folder, StatsFile), []types.TradeStats{stats})
}

// WriteRuns writes every optimizer combination to runs.parquet in folder.
func WriteRuns(folder string, results []types.RunResult) error {
	path := filepath.Join(folder, RunsFile)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to remove previous runs file", err)
	}

	runs := NewRunsWriter(path)

	return writeAndClose(runs, func() error { return runs.Write(results...) })
}

func writeAndClose(w parquetWriter, write func() error) error {
	if err := w.Initialize(); err != nil {
		return err
	}

	if err := write(); err != nil {
		w.Close()

		return err
	}

	return w.Close()
}
