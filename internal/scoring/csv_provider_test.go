package scoring

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type CSVScoreProviderTestSuite struct {
	suite.Suite
	dir string
}

func TestCSVScoreProviderSuite(t *testing.T) {
	suite.Run(t, new(CSVScoreProviderTestSuite))
}

func (suite *CSVScoreProviderTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()
}

func (suite *CSVScoreProviderTestSuite) write(content string) string {
	path := filepath.Join(suite.dir, "predictions.csv")
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0644))

	return path
}

func (suite *CSVScoreProviderTestSuite) TestScoreLookup() {
	path := suite.write("datetime,open,close,pred_value\n" +
		"2024-01-01 00:00:00,1,1.1,0.42\n" +
		"2024-01-01 00:01:00,1.1,1.2,-0.5\n")

	provider, err := NewCSVScoreProvider(path)
	suite.Require().NoError(err)
	suite.Equal(2, provider.Len())

	bar := types.Bar{Time: time.Date(2024, 1, 1, 0, 1, 0, 0, time.UTC)}
	score, err := provider.Score(context.Background(), bar, nil)
	suite.Require().NoError(err)
	suite.Equal(-0.5, score)
}

func (suite *CSVScoreProviderTestSuite) TestMissingBar() {
	provider := NewStaticScoreProvider(map[int64]float64{})

	_, err := provider.Score(context.Background(), types.Bar{Time: time.Now()}, nil)
	suite.True(errors.HasCode(err, errors.ErrCodeScoreUnavailable))
}

func (suite *CSVScoreProviderTestSuite) TestBadFiles() {
	_, err := NewCSVScoreProvider(filepath.Join(suite.dir, "missing.csv"))
	suite.True(errors.HasCode(err, errors.ErrCodeDataNotFound))

	path := suite.write("datetime,pred_value\nnot-a-date,0.1\n")
	_, err = NewCSVScoreProvider(path)
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataParseFailed))
}

func (suite *CSVScoreProviderTestSuite) TestONNXRequiresFeatureCount() {
	_, err := NewONNXProvider(ONNXConfig{ModelPath: "model.onnx"})
	suite.True(errors.IsConfigurationError(err))
}
