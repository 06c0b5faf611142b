package main

import (
	"os"
	"path/filepath"
	"testing"

	engine "github.com/rxtech-lab/argo-signals/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-signals/internal/policy"
	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

type GenerateCmdTestSuite struct {
	suite.Suite
	tempDir string
}

func (suite *GenerateCmdTestSuite) SetupTest() {
	suite.tempDir = suite.T().TempDir()
}

func (suite *GenerateCmdTestSuite) TestGenerate() {
	configDir := filepath.Join(suite.tempDir, "config")
	suite.Require().NoError(generate(configDir))

	schemaContent, err := os.ReadFile(filepath.Join(configDir, schemaName))
	suite.Require().NoError(err)
	suite.Contains(string(schemaContent), "safety_fraction")

	sampleConfigContent, err := os.ReadFile(filepath.Join(configDir, "backtest-engine-v1-config.yaml"))
	suite.Require().NoError(err)
	suite.Contains(string(sampleConfigContent), "# yaml-language-server: $schema=backtest-engine-v1-config.json")

	var config engine.BacktestEngineV1Config
	suite.Require().NoError(yaml.Unmarshal(sampleConfigContent, &config))
	suite.Equal(engine.EmptyConfig(), config)

	for _, kind := range policy.Kinds() {
		suite.FileExists(filepath.Join(configDir, "policies", string(kind)+".json"))
	}
}

func (suite *GenerateCmdTestSuite) TestSampleConfigNotOverwritten() {
	samplePath := filepath.Join(suite.tempDir, "existing-config.yaml")
	originalContent := []byte("existing content")
	suite.Require().NoError(os.WriteFile(samplePath, originalContent, 0644))

	suite.Require().NoError(generateSampleConfig(engine.EmptyConfig(), samplePath, "test-schema.json"))

	content, err := os.ReadFile(samplePath)
	suite.Require().NoError(err)
	suite.Equal(string(originalContent), string(content))
}

func (suite *GenerateCmdTestSuite) TestGenerateSchemaFileInvalidPath() {
	blocker := filepath.Join(suite.tempDir, "file")
	suite.Require().NoError(os.WriteFile(blocker, []byte("x"), 0644))

	err := generateSchemaFile(engine.EmptyConfig(), filepath.Join(blocker, "schema.json"))
	suite.Error(err)
	suite.Contains(err.Error(), "failed to")
}

func (suite *GenerateCmdTestSuite) TestGetSchemaReference() {
	suite.Equal("# yaml-language-server: $schema=test-schema.json\n", getSchemaReference("test-schema.json"))
	suite.Equal("# yaml-language-server: $schema=\n", getSchemaReference(""))
}

func TestGenerateCmdSuite(t *testing.T) {
	suite.Run(t, new(GenerateCmdTestSuite))
}
