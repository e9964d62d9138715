// Package formatting renders analysis reports for the command line.
//
// Four output formats are supported: console (plain text), JSON, YAML and
// rich tables. JSON and YAML output is stable for a given document, which
// makes it usable as a fixture or as input to other tools.
package formatting

import (
	"io"
	"os"

	"wbdeps/internal/analysis"
)

// OutputFormat represents the desired output format
type OutputFormat string

const (
	FormatConsole OutputFormat = "console" // Simple console output
	FormatJSON    OutputFormat = "json"    // JSON output
	FormatYAML    OutputFormat = "yaml"    // YAML output
	FormatTable   OutputFormat = "table"   // Rich table output
)

// Options configures the formatter behavior
type Options struct {
	Format OutputFormat
	Quiet  bool      // Suppress everything but summaries
	Color  bool      // Enable colored output
	Out    io.Writer // Destination, os.Stdout when nil
}

func (o Options) writer() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}
	return o.Out
}

// DocumentResult is the outcome of processing one document.
type DocumentResult struct {
	File   string
	Report *analysis.Report
	Err    error
}

// Formatter renders command results
type Formatter interface {
	// FormatReports renders one report per document, in the given order.
	FormatReports(results []DocumentResult) error
	// FormatNames renders a list of variable names.
	FormatNames(names []string) error
	// FormatCycles renders cycles found in a standalone graph.
	FormatCycles(cycles [][]string) error

	// Configuration
	SetOptions(options Options)
	GetOptions() Options
}

// Factory creates formatters for different output formats
type Factory interface {
	CreateFormatter(options Options) Formatter
}

// NewFactory creates a new formatter factory
func NewFactory() Factory {
	return &factory{}
}

// factory implements the Factory interface
type factory struct{}

// CreateFormatter creates the appropriate formatter based on options
func (f *factory) CreateFormatter(options Options) Formatter {
	switch options.Format {
	case FormatJSON:
		return NewJSONFormatter(options)
	case FormatYAML:
		return NewYAMLFormatter(options)
	case FormatTable:
		return NewTableFormatter(options)
	case FormatConsole:
		fallthrough
	default:
		return NewConsoleFormatter(options)
	}
}
