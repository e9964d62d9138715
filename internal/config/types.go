package config

import (
	"wbdeps/internal/analysis"
	"wbdeps/internal/document"
)

// Config is the top-level configuration structure for wbdeps.
type Config struct {
	Schema             document.Schema          `yaml:"schema"`
	Policy             analysis.Policy          `yaml:"policy"`
	CanonicalAddresses []analysis.CanonicalRule `yaml:"canonicalAddresses,omitempty"`
	IgnoreVariables    []string                 `yaml:"ignoreVariables,omitempty"`
	Output             OutputConfig             `yaml:"output"`
}

// OutputConfig controls how reports are printed.
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // console, json, yaml or table (default: table)
	Color  bool   `yaml:"color"`            // Colored console and table output (default: true)
}

// AnalysisOptions returns the engine options described by the configuration.
func (c Config) AnalysisOptions() []analysis.Option {
	return []analysis.Option{
		analysis.WithSchema(c.Schema),
		analysis.WithIgnoreVariables(c.IgnoreVariables...),
		analysis.WithCanonicalRules(c.CanonicalAddresses...),
	}
}
