package version

import (
	"testing"

	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckStrategyFileCompatibility(t *testing.T) {
	tests := []struct {
		name          string
		engine        string
		file          string
		expectError   bool
		errorContains string
	}{
		{name: "exact match", engine: "0.3.0", file: "0.3.0"},
		{name: "patch differs", engine: "v0.3.4", file: "v0.3.1"},
		{name: "empty file version", engine: "0.3.0", file: ""},
		{name: "dev engine", engine: "main", file: "1.0.0"},
		{name: "dev file", engine: "0.3.0", file: "main"},
		{name: "minor differs", engine: "0.3.0", file: "0.2.0", expectError: true, errorContains: "version mismatch"},
		{name: "major differs", engine: "1.3.0", file: "0.3.0", expectError: true, errorContains: "version mismatch"},
		{name: "invalid file version", engine: "0.3.0", file: "abc", expectError: true, errorContains: "invalid strategy file version"},
		{name: "invalid engine version", engine: "xyz", file: "0.3.0", expectError: true, errorContains: "invalid engine version"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckStrategyFileCompatibility(tc.engine, tc.file)
			if !tc.expectError {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errorContains)
			assert.True(t, errors.IsConfigurationError(err))
		})
	}
}

func TestGetVersion(t *testing.T) {
	original := Version
	defer func() { Version = original }()

	Version = "v9.9.9"
	assert.Equal(t, "v9.9.9", GetVersion())
}
