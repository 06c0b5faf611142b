package datasource

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signals/internal/logger"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"go.uber.org/zap"
)

type DuckDBDataSource struct {
	db         *sql.DB
	logger     *logger.Logger
	sq         squirrel.StatementBuilderType
	warmupBars int
}

// NewDataSource creates a new DuckDB data source instance with the specified database path.
// The path parameter specifies the DuckDB database file location; an empty
// path keeps the database in memory.
// This is distinct from Initialize() which loads market data into the database.
func NewDataSource(path string, warmupBars int, logger *logger.Logger) (*DuckDBDataSource, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open DuckDB", err)
	}

	_, err = db.Exec(`SET threads=4;`)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to set DuckDB options", err)
	}

	return &DuckDBDataSource{
		db:         db,
		logger:     logger,
		sq:         squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		warmupBars: max(warmupBars, 0),
	}, nil
}

// Initialize implements DataSource. path is a parquet file, a CSV file or a
// glob over either.
func (d *DuckDBDataSource) Initialize(path string) error {
	d.logger.Debug("Initializing DuckDB data source", zap.String("path", path))

	_, err := d.db.Exec(`DROP VIEW IF EXISTS market_data;`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to drop existing view", err)
	}

	reader := "read_parquet"
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		reader = "read_csv_auto"
	}

	// Squirrel has no CREATE VIEW support.
	query := fmt.Sprintf(`
		CREATE VIEW market_data AS
		SELECT CAST(time AS TIMESTAMP) AS time, open, high, low, close, volume
		FROM %s('%s');
	`, reader, strings.ReplaceAll(path, "'", "''"))

	_, err = d.db.Exec(query)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to load market data from %s", path)
	}

	return nil
}

// effectiveStart moves start back by warmupBars bars.
func (d *DuckDBDataSource) effectiveStart(start optional.Option[time.Time]) (optional.Option[time.Time], error) {
	if start.IsNone() || d.warmupBars == 0 {
		return start, nil
	}

	query, args, err := d.sq.
		Select("time").
		From("market_data").
		Where(squirrel.Lt{"time": start.Unwrap()}).
		OrderBy("time DESC").
		Limit(1).
		Offset(uint64(d.warmupBars - 1)).
		ToSql()
	if err != nil {
		return start, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build warmup query", err)
	}

	var warmupStart time.Time

	err = d.db.QueryRow(query, args...).Scan(&warmupStart)
	if err == sql.ErrNoRows {
		// fewer than warmupBars bars before start: read from the beginning
		return optional.None[time.Time](), nil
	}

	if err != nil {
		return start, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query warmup start", err)
	}

	return optional.Some(warmupStart), nil
}

func (d *DuckDBDataSource) rangeQuery(builder squirrel.SelectBuilder, start optional.Option[time.Time], end optional.Option[time.Time]) (squirrel.SelectBuilder, error) {
	from, err := d.effectiveStart(start)
	if err != nil {
		return builder, err
	}

	if from.IsSome() {
		builder = builder.Where(squirrel.GtOrEq{"time": from.Unwrap()})
	}

	if end.IsSome() {
		builder = builder.Where(squirrel.LtOrEq{"time": end.Unwrap()})
	}

	return builder, nil
}

// Count implements DataSource.
func (d *DuckDBDataSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	builder, err := d.rangeQuery(d.sq.Select("COUNT(*)").From("market_data"), start, end)
	if err != nil {
		return 0, err
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build count query", err)
	}

	var count int

	if err := d.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count market data", err)
	}

	return count, nil
}

// ReadAll implements DataSource.
func (d *DuckDBDataSource) ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.Bar, error) bool) {
	return func(yield func(types.Bar, error) bool) {
		d.logger.Debug("Reading all data from DuckDB")

		builder, err := d.rangeQuery(
			d.sq.Select("time", "open", "high", "low", "close", "volume").From("market_data"),
			start, end,
		)
		if err != nil {
			yield(types.Bar{}, err)

			return
		}

		query, args, err := builder.OrderBy("time ASC").ToSql()
		if err != nil {
			yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err))

			return
		}

		rows, err := d.db.Query(query, args...)
		if err != nil {
			yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query market data", err))

			return
		}
		defer rows.Close()

		for rows.Next() {
			var bar types.Bar

			err := rows.Scan(&bar.Time, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume)
			if err != nil {
				yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan row", err))

				return
			}

			bar.Time = bar.Time.UTC()

			if !yield(bar, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating rows", err))
		}
	}
}

// Close implements DataSource.
func (d *DuckDBDataSource) Close() error {
	return d.db.Close()
}
