package config

import (
	"wbdeps/internal/analysis"
	"wbdeps/internal/document"
)

const (
	// FunctionAppTemplate is the full ARM address of a function app, built from
	// the parameters workbooks usually derive from the selected app.
	FunctionAppTemplate = "/subscriptions/{Subscription}/resourceGroups/{ResourceGroup}/providers/Microsoft.Web/sites/{FunctionAppName}"

	// DefaultOutputFormat is used when neither the flag nor the file sets one.
	DefaultOutputFormat = "table"
)

// GetDefaultConfig returns the configuration used when no config.yaml exists.
func GetDefaultConfig() Config {
	return Config{
		Schema: document.DefaultSchema(),
		Policy: analysis.DefaultPolicy(),
		CanonicalAddresses: []analysis.CanonicalRule{
			{Variable: "FunctionApp", Template: FunctionAppTemplate},
		},
		Output: OutputConfig{
			Format: DefaultOutputFormat,
			Color:  true,
		},
	}
}
