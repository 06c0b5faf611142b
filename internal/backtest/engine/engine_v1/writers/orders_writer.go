package writers

import "github.com/rxtech-lab/argo-signals/internal/types"

// OrdersWriter writes submitted orders with their final status to a parquet file.
type OrdersWriter struct {
	*parquetTable
}

// NewOrdersWriter creates a new OrdersWriter.
// outputPath is the full path to the parquet file.
func NewOrdersWriter(outputPath string) *OrdersWriter {
	return &OrdersWriter{
		parquetTable: newParquetTable(outputPath, "orders", `
			order_id TEXT,
			side TEXT,
			requested_size DOUBLE,
			status TEXT,
			fill_price DOUBLE,
			fee DOUBLE,
			submitted_at TIMESTAMP,
			resolved_at TIMESTAMP,
			reason TEXT
		`, "order_id", "side", "requested_size", "status", "fill_price", "fee", "submitted_at", "resolved_at", "reason"),
	}
}

// Write persists orders and exports to parquet. Unfilled orders have a NULL
// fill price and unresolved ones a NULL resolved_at.
func (w *OrdersWriter) Write(orders ...types.Order) error {
	rows := make([][]any, 0, len(orders))
	for _, o := range orders {
		var fillPrice any
		if price, err := o.FillPrice.Take(); err == nil {
			fillPrice = price
		}

		var resolvedAt any
		if !o.ResolvedAt.IsZero() {
			resolvedAt = o.ResolvedAt
		}

		rows = append(rows, []any{
			o.OrderID, string(o.Side), o.RequestedSize, string(o.Status),
			fillPrice, o.Fee, o.SubmittedAt, resolvedAt, o.Reason,
		})
	}

	return w.insert(rows...)
}
