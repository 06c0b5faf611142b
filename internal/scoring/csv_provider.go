package scoring

import (
	"context"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

type predictionRow struct {
	Time      types.CSVTime `csv:"datetime"`
	PredValue float64       `csv:"pred_value"`
}

// CSVScoreProvider serves scores precomputed offline, keyed by bar time.
// The file needs a datetime column and a pred_value column; any other
// columns (the exported features) are ignored.
type CSVScoreProvider struct {
	scores map[int64]float64
}

// NewCSVScoreProvider loads every prediction in path.
func NewCSVScoreProvider(path string) (*CSVScoreProvider, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to open predictions file %s", path)
	}
	defer file.Close()

	var rows []predictionRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "failed to parse predictions file %s", path)
	}

	return NewStaticScoreProvider(rowsToScores(rows)), nil
}

// NewStaticScoreProvider serves the given scores, keyed by unix nanoseconds.
func NewStaticScoreProvider(scores map[int64]float64) *CSVScoreProvider {
	return &CSVScoreProvider{scores: scores}
}

func rowsToScores(rows []predictionRow) map[int64]float64 {
	scores := make(map[int64]float64, len(rows))
	for _, row := range rows {
		scores[row.Time.UnixNano()] = row.PredValue
	}

	return scores
}

// Len returns the number of loaded predictions.
func (p *CSVScoreProvider) Len() int {
	return len(p.scores)
}

// Score implements Provider. The feature vector is not used.
func (p *CSVScoreProvider) Score(_ context.Context, bar types.Bar, _ []float64) (float64, error) {
	score, ok := p.scores[bar.Time.UnixNano()]
	if !ok {
		return 0, errors.Newf(errors.ErrCodeScoreUnavailable, "no prediction for bar at %s", bar.Time.UTC().Format("2006-01-02 15:04:05"))
	}

	return score, nil
}
