package formatting

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter provides YAML output formatting
type YAMLFormatter struct {
	options Options
}

// NewYAMLFormatter creates a new YAML formatter
func NewYAMLFormatter(options Options) Formatter {
	return &YAMLFormatter{
		options: options,
	}
}

// FormatReports writes the reports as YAML
func (f *YAMLFormatter) FormatReports(results []DocumentResult) error {
	return f.write(serializable(results))
}

// FormatNames writes the names as a YAML sequence
func (f *YAMLFormatter) FormatNames(names []string) error {
	if names == nil {
		names = []string{}
	}
	return f.write(names)
}

// FormatCycles writes a cycles key holding every cycle
func (f *YAMLFormatter) FormatCycles(cycles [][]string) error {
	if cycles == nil {
		cycles = [][]string{}
	}
	return f.write(map[string]interface{}{"cycles": cycles})
}

// SetOptions updates the formatter options
func (f *YAMLFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *YAMLFormatter) GetOptions() Options {
	return f.options
}

// write marshals data to YAML
func (f *YAMLFormatter) write(data interface{}) error {
	yamlBytes, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to format YAML: %w", err)
	}
	_, err = f.options.writer().Write(yamlBytes)
	return err
}
