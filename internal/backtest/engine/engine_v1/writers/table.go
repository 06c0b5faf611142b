// Package writers persists run results as parquet files through an in-memory
// DuckDB table per file.
package writers

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

// parquetTable is an in-memory DuckDB table mirrored to a parquet file.
type parquetTable struct {
	db         *sql.DB
	sq         squirrel.StatementBuilderType
	name       string
	schema     string
	columns    []string
	outputPath string
	mu         sync.Mutex
}

func newParquetTable(outputPath, name, schema string, columns ...string) *parquetTable {
	return &parquetTable{
		sq:         squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		name:       name,
		schema:     schema,
		columns:    columns,
		outputPath: outputPath,
	}
}

// Initialize creates the output directory and the table. Rows of an existing
// parquet file at the output path are loaded so a writer can append to it.
func (t *parquetTable) Initialize() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(t.outputPath), 0755); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to create data directory", err)
	}

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to open DuckDB connection", err)
	}

	if _, err := db.Exec(fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", t.name, t.schema)); err != nil {
		db.Close()

		return errors.Wrapf(errors.ErrCodeBacktestWriteFailed, err, "failed to create %s table", t.name)
	}

	if _, err := os.Stat(t.outputPath); err == nil {
		// an unreadable file is overwritten on the next export
		_, _ = db.Exec(fmt.Sprintf("INSERT INTO %s SELECT * FROM read_parquet('%s')", t.name, quote(t.outputPath)))
	}

	t.db = db

	return nil
}

// insert adds rows and exports the table once.
func (t *parquetTable) insert(rows ...[]any) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.db == nil {
		return errors.New(errors.ErrCodeBacktestWriteFailed, "writer not initialized")
	}

	if len(rows) > 0 {
		query := t.sq.Insert(t.name).Columns(t.columns...)
		for _, row := range rows {
			query = query.Values(row...)
		}

		if _, err := query.RunWith(t.db).Exec(); err != nil {
			return errors.Wrapf(errors.ErrCodeBacktestWriteFailed, err, "failed to insert into %s", t.name)
		}
	}

	return t.exportToParquet()
}

// Flush forces an export to parquet.
func (t *parquetTable) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.db == nil {
		return errors.New(errors.ErrCodeBacktestWriteFailed, "writer not initialized")
	}

	return t.exportToParquet()
}

// Count returns the number of rows stored.
func (t *parquetTable) Count() (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.db == nil {
		return 0, errors.New(errors.ErrCodeBacktestWriteFailed, "writer not initialized")
	}

	var count int

	query, args, err := t.sq.Select("COUNT(*)").From(t.name).ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build count query", err)
	}

	if err := t.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to count %s", t.name)
	}

	return count, nil
}

// GetOutputPath returns the parquet file path.
func (t *parquetTable) GetOutputPath() string {
	return t.outputPath
}

// Close releases database resources.
func (t *parquetTable) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.db != nil {
		if err := t.db.Close(); err != nil {
			return errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to close database", err)
		}

		t.db = nil
	}

	return nil
}

func (t *parquetTable) exportToParquet() error {
	_, err := t.db.Exec(fmt.Sprintf("COPY (SELECT * FROM %s) TO '%s' (FORMAT PARQUET)", t.name, quote(t.outputPath)))
	if err != nil {
		return errors.Wrapf(errors.ErrCodeBacktestWriteFailed, err, "failed to export %s to parquet", t.name)
	}

	return nil
}

func quote(path string) string {
	return strings.ReplaceAll(path, "'", "''")
}
