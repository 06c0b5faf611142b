package writers

import "github.com/rxtech-lab/argo-signals/internal/types"

// TradesWriter writes closed round trips to a parquet file.
type TradesWriter struct {
	*parquetTable
}

// NewTradesWriter creates a new TradesWriter.
// outputPath is the full path to the parquet file.
func NewTradesWriter(outputPath string) *TradesWriter {
	return &TradesWriter{
		parquetTable: newParquetTable(outputPath, "trades", `
			entry_time TIMESTAMP,
			exit_time TIMESTAMP,
			entry_price DOUBLE,
			exit_price DOUBLE,
			size DOUBLE,
			pnl DOUBLE,
			pnl_pct DOUBLE,
			fees DOUBLE,
			net_pnl DOUBLE,
			reason TEXT
		`, "entry_time", "exit_time", "entry_price", "exit_price", "size", "pnl", "pnl_pct", "fees", "net_pnl", "reason"),
	}
}

// Write persists trades and exports to parquet.
func (w *TradesWriter) Write(trades ...types.TradeRecord) error {
	rows := make([][]any, 0, len(trades))
	for _, t := range trades {
		rows = append(rows, []any{
			t.EntryTime, t.ExitTime, t.EntryPrice, t.ExitPrice, t.Size,
			t.PnL, t.PnLPct, t.Fees, t.NetPnL(), t.Reason,
		})
	}

	return w.insert(rows...)
}
