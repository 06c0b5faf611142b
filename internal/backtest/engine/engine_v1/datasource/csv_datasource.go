package datasource

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signals/internal/logger"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"go.uber.org/zap"
)

type csvBar struct {
	Time   types.CSVTime `csv:"datetime"`
	Open   float64       `csv:"open"`
	High   float64       `csv:"high"`
	Low    float64       `csv:"low"`
	Close  float64       `csv:"close"`
	Volume float64       `csv:"volume"`
}

// headerAliases maps the timestamp column names found in exported kline
// files onto datetime.
var headerAliases = map[string]string{
	"time":      "datetime",
	"timestamp": "datetime",
	"date":      "datetime",
	"open time": "datetime",
	"open_time": "datetime",
}

// CSVDataSource reads a CSV file, or every *.csv chunk in a folder (for
// example one file per month), merges them, sorts by time and drops
// duplicate timestamps. Header names are matched case-insensitively.
type CSVDataSource struct {
	bars       []types.Bar
	warmupBars int
	logger     *logger.Logger
}

// NewCSVDataSource creates a CSV data source. warmupBars extra bars before a
// requested start time are included in ReadAll so indicators can settle.
func NewCSVDataSource(warmupBars int, logger *logger.Logger) *CSVDataSource {
	return &CSVDataSource{
		warmupBars: max(warmupBars, 0),
		logger:     logger,
	}
}

// Initialize implements DataSource.
func (c *CSVDataSource) Initialize(path string) error {
	files, err := csvFiles(path)
	if err != nil {
		return err
	}

	var bars []types.Bar

	for _, file := range files {
		rows, err := readCSVBars(file)
		if err != nil {
			return err
		}

		bars = append(bars, rows...)
	}

	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Time.Before(bars[j].Time)
	})

	deduped := bars[:0]

	for i, bar := range bars {
		if i > 0 && bar.Time.Equal(deduped[len(deduped)-1].Time) {
			continue
		}

		deduped = append(deduped, bar)
	}

	c.logger.Debug("Loaded CSV bars",
		zap.String("path", path),
		zap.Int("files", len(files)),
		zap.Int("bars", len(deduped)),
		zap.Int("duplicates", len(bars)-len(deduped)),
	)

	c.bars = deduped

	return nil
}

func csvFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to open %s", path)
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	files, err := filepath.Glob(filepath.Join(path, "*.csv"))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to list %s", path)
	}

	if len(files) == 0 {
		return nil, errors.Newf(errors.ErrCodeDataNotFound, "no CSV files found in folder: %s", path)
	}

	sort.Strings(files)

	return files, nil
}

func readCSVBars(path string) ([]types.Bar, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to open CSV file %s", path)
	}
	defer file.Close()

	var rows []csvBar
	if err := gocsv.UnmarshalCSV(newHeaderNormalizingReader(file), &rows); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "failed to parse CSV file %s", path)
	}

	bars := make([]types.Bar, 0, len(rows))
	for _, row := range rows {
		bars = append(bars, types.Bar{
			Time:   row.Time.UTC(),
			Open:   row.Open,
			High:   row.High,
			Low:    row.Low,
			Close:  row.Close,
			Volume: row.Volume,
		})
	}

	return bars, nil
}

// headerNormalizingReader lower-cases the header row and applies headerAliases.
// An unnamed first column (a pandas index) is treated as datetime.
type headerNormalizingReader struct {
	*csv.Reader
	headerDone bool
}

func newHeaderNormalizingReader(r io.Reader) *headerNormalizingReader {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	return &headerNormalizingReader{Reader: reader}
}

func (r *headerNormalizingReader) Read() ([]string, error) {
	record, err := r.Reader.Read()
	if err != nil || r.headerDone {
		return record, err
	}

	r.headerDone = true

	for i, name := range record {
		name = strings.ToLower(strings.TrimSpace(name))
		if alias, ok := headerAliases[name]; ok {
			name = alias
		}

		if i == 0 && name == "" {
			name = "datetime"
		}

		record[i] = name
	}

	return record, nil
}

func (r *headerNormalizingReader) ReadAll() ([][]string, error) {
	var records [][]string

	for {
		record, err := r.Read()
		if err == io.EOF {
			return records, nil
		}

		if err != nil {
			return nil, err
		}

		records = append(records, record)
	}
}

// window returns the index range of bars in [start, end], widened backwards
// by warmupBars when a start time is given.
func (c *CSVDataSource) window(start optional.Option[time.Time], end optional.Option[time.Time]) (int, int) {
	from := 0
	if start.IsSome() {
		s := start.Unwrap()
		from = sort.Search(len(c.bars), func(i int) bool { return !c.bars[i].Time.Before(s) })
		from = max(from-c.warmupBars, 0)
	}

	to := len(c.bars)
	if end.IsSome() {
		e := end.Unwrap()
		to = sort.Search(len(c.bars), func(i int) bool { return c.bars[i].Time.After(e) })
	}

	return from, max(to, from)
}

// ReadAll implements DataSource.
func (c *CSVDataSource) ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.Bar, error) bool) {
	return func(yield func(types.Bar, error) bool) {
		from, to := c.window(start, end)

		for _, bar := range c.bars[from:to] {
			if !yield(bar, nil) {
				return
			}
		}
	}
}

// Count implements DataSource.
func (c *CSVDataSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	from, to := c.window(start, end)

	return to - from, nil
}

// Close implements DataSource.
func (c *CSVDataSource) Close() error {
	c.bars = nil

	return nil
}
