package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckConfigCompatibility(t *testing.T) {
	tests := []struct {
		name          string
		engineVersion string
		configVersion string
		expectError   bool
		errorContains string
	}{
		{
			name:          "exact match",
			engineVersion: "1.2.0",
			configVersion: "1.2.0",
			expectError:   false,
		},
		{
			name:          "engine patch higher",
			engineVersion: "1.2.1",
			configVersion: "1.2.0",
			expectError:   false,
		},
		{
			name:          "config patch higher",
			engineVersion: "1.2.0",
			configVersion: "1.2.5",
			expectError:   false,
		},
		{
			name:          "v prefix stripped",
			engineVersion: "v1.0.0",
			configVersion: "1.0.3",
			expectError:   false,
		},
		{
			name:          "engine dev build skips check",
			engineVersion: "main",
			configVersion: "1.2.0",
			expectError:   false,
		},
		{
			name:          "config dev build skips check",
			engineVersion: "1.2.0",
			configVersion: "main",
			expectError:   false,
		},
		{
			name:          "minor mismatch",
			engineVersion: "1.3.0",
			configVersion: "1.2.0",
			expectError:   true,
			errorContains: "minor version mismatch",
		},
		{
			name:          "major mismatch",
			engineVersion: "2.0.0",
			configVersion: "1.2.0",
			expectError:   true,
			errorContains: "major version mismatch",
		},
		{
			name:          "invalid engine version",
			engineVersion: "not-a-version",
			configVersion: "1.2.0",
			expectError:   true,
			errorContains: "invalid engine version",
		},
		{
			name:          "invalid config version",
			engineVersion: "1.2.0",
			configVersion: "garbage",
			expectError:   true,
			errorContains: "invalid config version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckConfigCompatibility(tt.engineVersion, tt.configVersion)
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetVersion(t *testing.T) {
	assert.NotEmpty(t, GetVersion())
}
