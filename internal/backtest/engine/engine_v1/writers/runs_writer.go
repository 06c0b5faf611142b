package writers

import (
	"encoding/json"

	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

// RunsWriter writes one row per optimizer combination.
type RunsWriter struct {
	*parquetTable
}

// NewRunsWriter creates a new RunsWriter.
// outputPath is the full path to the parquet file.
func NewRunsWriter(outputPath string) *RunsWriter {
	return &RunsWriter{
		parquetTable: newParquetTable(outputPath, "runs", `
			run_id TEXT,
			policy TEXT,
			parameters TEXT,
			terminal_portfolio_value DOUBLE,
			trades INTEGER,
			win_rate DOUBLE,
			total_fees DOUBLE,
			error TEXT
		`, "run_id", "policy", "parameters", "terminal_portfolio_value", "trades", "win_rate", "total_fees", "error"),
	}
}

// Write persists run results and exports to parquet. Parameters are stored as
// JSON; failed runs keep their -Inf value and the error message.
func (w *RunsWriter) Write(results ...types.RunResult) error {
	rows := make([][]any, 0, len(results))
	for _, r := range results {
		params, err := json.Marshal(r.Parameters)
		if err != nil {
			return errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to encode run parameters", err)
		}

		var message any
		if r.Err != nil {
			message = r.Err.Error()
		}

		rows = append(rows, []any{
			r.ID, r.Policy, string(params), r.TerminalPortfolioValue,
			r.Stats.TradeResult.NumberOfTrades, r.Stats.TradeResult.WinRate, r.Stats.TotalFees, message,
		})
	}

	return w.insert(rows...)
}
