package analysis

import (
	"wbdeps/internal/document"
	"wbdeps/pkg/logging"
)

// Policy selects which repairs Repair may stage.
type Policy struct {
	AddMissing     bool `yaml:"addMissing" json:"addMissing"`
	RemoveExtra    bool `yaml:"removeExtra" json:"removeExtra"`
	DropDuplicates bool `yaml:"dropDuplicates" json:"dropDuplicates"`
	Canonicalize   bool `yaml:"canonicalize" json:"canonicalize"`
}

// DefaultPolicy adds missing declarations, drops duplicates and rewrites
// addresses, but keeps extra declarations since they are harmless.
func DefaultPolicy() Policy {
	return Policy{
		AddMissing:     true,
		RemoveExtra:    false,
		DropDuplicates: true,
		Canonicalize:   true,
	}
}

// Option configures Analyze and Repair.
type Option func(*options)

type options struct {
	schema document.Schema
	ignore map[string]bool
	rules  []CanonicalRule
}

func newOptions(opts []Option) options {
	o := options{
		schema: document.DefaultSchema(),
		ignore: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithSchema replaces the default workbook schema.
func WithSchema(s document.Schema) Option {
	return func(o *options) {
		o.schema = s
	}
}

// WithIgnoreVariables suppresses unresolved-reference findings for names the
// host provides itself.
func WithIgnoreVariables(names ...string) Option {
	return func(o *options) {
		for _, n := range names {
			o.ignore[n] = true
		}
	}
}

// WithCanonicalRules sets the address canonicalization rules used by Repair.
func WithCanonicalRules(rules ...CanonicalRule) Option {
	return func(o *options) {
		o.rules = append(o.rules, rules...)
	}
}

// Analyze checks doc without modifying it.
func Analyze(doc interface{}, opts ...Option) *Report {
	o := newOptions(opts)
	r := build(doc, o)
	r.check()
	logging.Debug("Analysis", "Checked %d nodes, found %d cycles and %d unresolved references",
		len(r.nodes), len(r.cycles), len(r.unresolved))
	return r.report(StateChecked)
}
