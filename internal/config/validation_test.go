package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wbdeps/internal/analysis"
)

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	assert.False(t, errs.HasErrors())
	assert.Equal(t, "no validation errors", errs.Error())

	errs.Add("output.format", "must be one of: json", "xml")
	assert.Equal(t, "field 'output.format': must be one of: json", errs.Error())

	errs.Add("", "second problem")
	assert.Equal(t, "validation failed: field 'output.format': must be one of: json; second problem", errs.Error())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr []string
	}{
		{
			name:   "defaults are valid",
			modify: func(c *Config) {},
		},
		{
			name:    "empty dependency field",
			modify:  func(c *Config) { c.Schema.DependencyField = " " },
			wantErr: []string{"schema.dependencyField"},
		},
		{
			name: "no templated fields",
			modify: func(c *Config) {
				c.Schema.AddressFields = nil
				c.Schema.ParameterFields = nil
				c.Schema.BodyFields = nil
			},
			wantErr: []string{"schema"},
		},
		{
			name:    "bad output format",
			modify:  func(c *Config) { c.Output.Format = "xml" },
			wantErr: []string{"output.format"},
		},
		{
			name: "duplicate canonical rule",
			modify: func(c *Config) {
				c.CanonicalAddresses = append(c.CanonicalAddresses, analysis.CanonicalRule{Variable: "FunctionApp", Template: "/x"})
			},
			wantErr: []string{"canonicalAddresses[1]"},
		},
		{
			name:    "empty ignored variable",
			modify:  func(c *Config) { c.IgnoreVariables = []string{""} },
			wantErr: []string{"ignoreVariables[0]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tt.modify(&cfg)

			err := cfg.Validate()
			if len(tt.wantErr) == 0 {
				assert.NoError(t, err)
				return
			}

			var errs ValidationErrors
			require.True(t, errors.As(err, &errs))
			var fields []string
			for _, e := range errs {
				fields = append(fields, e.Field)
			}
			assert.Equal(t, tt.wantErr, fields)
		})
	}
}

func TestValidateOneOf(t *testing.T) {
	assert.NoError(t, ValidateOneOf("f", "json", OutputFormats))
	err := ValidateOneOf("f", "xml", OutputFormats)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be one of: console, json, yaml, table")
}
