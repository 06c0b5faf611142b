package strategy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type StrategyFileTestSuite struct {
	suite.Suite
}

func TestStrategyFileSuite(t *testing.T) {
	suite.Run(t, new(StrategyFileTestSuite))
}

func (suite *StrategyFileTestSuite) TestParse() {
	file, err := Parse([]byte(`
policy: bollinger_stop_loss
parameters:
  period: 450
  lower_dev: 0.55
grid:
  stop_loss: [0.03, 0.05]
  upper_dev: [0.005, 0.01]
`))
	suite.Require().NoError(err)
	suite.Equal("bollinger_stop_loss", file.Policy)
	suite.Equal(450, file.Parameters["period"])
	suite.Equal([]string{"stop_loss", "upper_dev"}, file.GridKeys())
	suite.Len(file.Grid["stop_loss"], 2)
}

func (suite *StrategyFileTestSuite) TestParseErrors() {
	tests := []struct {
		name string
		data string
	}{
		{name: "not yaml", data: "policy: [unclosed"},
		{name: "missing policy", data: "parameters: {period: 3}"},
		{name: "incompatible version", data: "engine_version: v9.0.0\npolicy: bollinger_band"},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			_, err := Parse([]byte(tc.data))
			suite.Require().Error(err)
			suite.True(errors.IsConfigurationError(err))
		})
	}
}

func (suite *StrategyFileTestSuite) TestLoad() {
	path := filepath.Join(suite.T().TempDir(), "strategy.yaml")
	suite.Require().NoError(os.WriteFile(path, []byte("policy: bollinger_band\n"), 0644))

	file, err := Load(path)
	suite.Require().NoError(err)
	suite.NotNil(file.Parameters)

	_, err = Load(filepath.Join(suite.T().TempDir(), "missing.yaml"))
	suite.Error(err)
}
