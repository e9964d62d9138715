package analysis

import (
	"fmt"
	"strings"

	"wbdeps/internal/document"
	"wbdeps/internal/template"
)

// CanonicalRule rewrites shorthand resource addresses. An address field whose
// value is {Variable}, or starts with {Variable}/, becomes Template followed
// by the rest of the original value.
//
// With the rule
//
//	variable: FunctionApp
//	template: /subscriptions/{Subscription}/resourceGroups/{ResourceGroup}/providers/Microsoft.Web/sites/{FunctionAppName}
//
// "{FunctionApp}/functions/Sync" is rewritten to the full ARM path.
type CanonicalRule struct {
	Variable string `yaml:"variable" json:"variable"`
	Template string `yaml:"template" json:"template"`
}

// Validate checks the rule is usable.
func (c CanonicalRule) Validate() error {
	if strings.TrimSpace(c.Variable) == "" {
		return fmt.Errorf("variable is required")
	}
	if strings.TrimSpace(c.Template) == "" {
		return fmt.Errorf("template is required")
	}
	if strings.HasPrefix(c.Template, template.Placeholder(c.Variable)) {
		return fmt.Errorf("template must not start with %s", template.Placeholder(c.Variable))
	}
	return nil
}

// Rewrite returns the canonical form of value, or false when the rule does
// not apply.
func (c CanonicalRule) Rewrite(value string) (string, bool) {
	ph := template.Placeholder(c.Variable)
	switch {
	case value == ph:
		return c.Template, true
	case strings.HasPrefix(value, ph+"/"):
		return c.Template + value[len(ph):], true
	default:
		return "", false
	}
}

// canonicalize stages address rewrites for every consumer in r. A rewrite is
// only staged when every variable of the template is defined in the document.
// It returns the staged edits, skip findings and, per node path, the template
// variables the node must declare afterwards.
func canonicalize(r *result, rules []CanonicalRule) ([]stagedEdit, []Finding, map[string][]string) {
	var edits []stagedEdit
	var findings []Finding
	required := make(map[string][]string)
	engine := template.New()

	for _, c := range r.checked {
		e := c.entry
		if e.Kind != document.KindConsumer {
			continue
		}
		for _, f := range e.Fields {
			if f.Role != document.RoleAddress {
				continue
			}
			value, ok := f.Value.(string)
			if !ok {
				continue
			}
			for _, rule := range rules {
				rewritten, ok := rule.Rewrite(value)
				if !ok {
					continue
				}
				if err := engine.ValidateDefined(rule.Template, r.visible(e, template.Scan(rule.Template))); err != nil {
					findings = append(findings, Finding{
						Kind:     FindingCanonicalizationSkipped,
						Path:     e.Path.String(),
						Variable: rule.Variable,
						Message:  fmt.Sprintf("%s not rewritten: %v", f.Path, err),
					})
					break
				}
				edits = append(edits, stagedEdit{
					path:    e.Path,
					field:   f.Path,
					old:     value,
					new:     rewritten,
					defines: definedName(e),
					node:    r.nodeAt[e.Path.String()],
				})
				key := e.Path.String()
				required[key] = union(required[key], template.Scan(rule.Template))
				break
			}
		}
	}
	return edits, findings, required
}

func definedName(e document.Entry) string {
	if e.Variable == nil {
		return ""
	}
	return e.Variable.Name
}
