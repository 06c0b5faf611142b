package strategy

import (
	"os"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-signals/internal/version"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"gopkg.in/yaml.v3"
)

// File is a strategy file: the policy to run and its parameters.
//
//	engine_version: v0.3.0
//	policy: bollinger_stop_loss
//	parameters:
//	  period: 450
//	grid:
//	  stop_loss: [0.03, 0.05, 0.07]
//
// Parameters are fixed for every run. Grid lists candidate values for the
// optimizer; grid keys override parameters of the same name.
type File struct {
	EngineVersion string           `yaml:"engine_version" json:"engine_version"`
	Policy        string           `yaml:"policy" json:"policy" validate:"required"`
	Parameters    map[string]any   `yaml:"parameters" json:"parameters"`
	Grid          map[string][]any `yaml:"grid" json:"grid"`
}

// Load reads and validates the strategy file at path.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read strategy file %s", path)
	}

	return Parse(data)
}

// Parse decodes a strategy file and checks it against the running engine version.
func Parse(data []byte) (File, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return File{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse strategy file", err)
	}

	if err := validator.New().Struct(file); err != nil {
		return File{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid strategy file", err)
	}

	if err := version.CheckStrategyFileCompatibility(version.GetVersion(), file.EngineVersion); err != nil {
		return File{}, err
	}

	if file.Parameters == nil {
		file.Parameters = map[string]any{}
	}

	return file, nil
}

// GridKeys returns the grid parameter names in sorted order.
func (f File) GridKeys() []string {
	keys := make([]string, 0, len(f.Grid))
	for k := range f.Grid {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
