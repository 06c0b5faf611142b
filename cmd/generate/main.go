package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	engine "github.com/rxtech-lab/argo-signals/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-signals/internal/policy"
	"gopkg.in/yaml.v3"
)

const schemaName = "backtest-engine-v1-config.json"

func main() {
	if err := generate("./config"); err != nil {
		log.Fatal(err)
	}
}

// generate writes the engine config schema, a sample config and one schema
// per policy kind into dir.
func generate(dir string) error {
	config := engine.EmptyConfig()
	schemaPath := filepath.Join(dir, schemaName)

	if err := generateSchemaFile(config, schemaPath); err != nil {
		return err
	}

	if err := generateSampleConfig(config, filepath.Join(dir, "backtest-engine-v1-config.yaml"), schemaName); err != nil {
		return err
	}

	if err := generatePolicySchemas(filepath.Join(dir, "policies")); err != nil {
		return err
	}

	log.Printf("Schema successfully generated at %s", schemaPath)

	return nil
}

func generateSchemaFile(config engine.BacktestEngineV1Config, path string) error {
	schemaJSON, err := config.GenerateSchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(schemaJSON), 0644); err != nil {
		return fmt.Errorf("failed to write schema to file: %w", err)
	}

	return nil
}

// generateSampleConfig never overwrites an existing file so local edits survive.
func generateSampleConfig(config engine.BacktestEngineV1Config, path string, schemaName string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	yamlBytes, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal sample config to yaml: %w", err)
	}

	yamlBytes = append([]byte(getSchemaReference(schemaName)), yamlBytes...)
	if err := os.WriteFile(path, yamlBytes, 0644); err != nil {
		return fmt.Errorf("failed to write sample config to file: %w", err)
	}

	log.Printf("Sample config successfully generated at %s", path)

	return nil
}

func generatePolicySchemas(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	for _, kind := range policy.Kinds() {
		schema, err := policy.Schema(kind)
		if err != nil {
			return fmt.Errorf("failed to generate schema for %s: %w", kind, err)
		}

		if err := os.WriteFile(filepath.Join(dir, string(kind)+".json"), []byte(schema), 0644); err != nil {
			return fmt.Errorf("failed to write schema for %s: %w", kind, err)
		}
	}

	return nil
}

func getSchemaReference(schemaName string) string {
	return "# yaml-language-server: $schema=" + schemaName + "\n"
}
