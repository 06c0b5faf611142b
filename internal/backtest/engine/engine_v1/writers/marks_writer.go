package writers

import "github.com/rxtech-lab/argo-signals/internal/types"

// MarksWriter writes the decision journal to a parquet file.
type MarksWriter struct {
	*parquetTable
}

// NewMarksWriter creates a new MarksWriter.
// outputPath is the full path to the parquet file.
func NewMarksWriter(outputPath string) *MarksWriter {
	return &MarksWriter{
		parquetTable: newParquetTable(outputPath, "marks", `
			bar_time TIMESTAMP,
			color TEXT,
			shape TEXT,
			title TEXT,
			message TEXT,
			category TEXT,
			intent TEXT,
			size DOUBLE,
			status TEXT
		`, "bar_time", "color", "shape", "title", "message", "category", "intent", "size", "status"),
	}
}

// Write persists marks and exports to parquet.
func (w *MarksWriter) Write(marks ...types.Mark) error {
	rows := make([][]any, 0, len(marks))
	for _, m := range marks {
		var intent, size, status any
		if d, err := m.Decision.Take(); err == nil {
			intent, size, status = string(d.Intent), d.Size, d.Status
		}

		rows = append(rows, []any{
			m.BarTime, string(m.Color), string(m.Shape), m.Title, m.Message, string(m.Category),
			intent, size, status,
		})
	}

	return w.insert(rows...)
}
