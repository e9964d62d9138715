package document

import (
	"encoding/json"
	"strings"

	"wbdeps/internal/template"
)

// Schema names the fields that give a document node its structural role.
// The defaults describe Azure Monitor workbooks.
type Schema struct {
	NameField            string   `yaml:"nameField" json:"nameField"`
	ExpressionField      string   `yaml:"expressionField" json:"expressionField"`
	SharedField          string   `yaml:"sharedField" json:"sharedField"`
	DependencyField      string   `yaml:"dependencyField" json:"dependencyField"`
	DependencyValueField string   `yaml:"dependencyValueField" json:"dependencyValueField"`
	DependencyTypeField  string   `yaml:"dependencyTypeField" json:"dependencyTypeField"`
	DependencyType       string   `yaml:"dependencyType" json:"dependencyType"`
	AddressFields        []string `yaml:"addressFields" json:"addressFields"`
	ParameterFields      []string `yaml:"parameterFields" json:"parameterFields"`
	BodyFields           []string `yaml:"bodyFields" json:"bodyFields"`
	ActionContextFields  []string `yaml:"actionContextFields" json:"actionContextFields"`
	ChildFields          []string `yaml:"childFields" json:"childFields"`
	DefinitionListFields []string `yaml:"definitionListFields" json:"definitionListFields"`
}

// DefaultSchema returns the workbook field layout.
func DefaultSchema() Schema {
	return Schema{
		NameField:            "name",
		ExpressionField:      "query",
		SharedField:          "isGlobal",
		DependencyField:      "criteriaData",
		DependencyValueField: "value",
		DependencyTypeField:  "criterionType",
		DependencyType:       "param",
		AddressFields:        []string{"url", "path"},
		ParameterFields:      []string{"urlParams", "params", "headers"},
		BodyFields:           []string{"body"},
		ActionContextFields:  []string{"armActionContext"},
		ChildFields:          []string{"items"},
		DefinitionListFields: []string{"parameters"},
	}
}

// Kind is the structural classification of a node.
type Kind int

const (
	KindOther Kind = iota
	KindDefinition
	KindConsumer
)

func (k Kind) String() string {
	switch k {
	case KindDefinition:
		return "definition"
	case KindConsumer:
		return "consumer"
	default:
		return "other"
	}
}

// FieldRole says why a field is templated.
type FieldRole int

const (
	RoleAddress FieldRole = iota
	RoleParameters
	RoleBody
	RoleExpression
)

func (r FieldRole) String() string {
	switch r {
	case RoleAddress:
		return "address"
	case RoleParameters:
		return "parameters"
	case RoleBody:
		return "body"
	default:
		return "expression"
	}
}

// IssueKind names a structural problem found while classifying.
type IssueKind string

const (
	IssueMalformed IssueKind = "malformed-node"
	IssueAmbiguous IssueKind = "ambiguous-classification"
)

// Issue is a structural problem attached to a node. It never stops a walk.
type Issue struct {
	Kind    IssueKind
	Message string
}

// Variable is the definition view of a node.
type Variable struct {
	Name       string
	Expression interface{}
	Shared     bool
}

// Field is one templated field of a consumer.
type Field struct {
	Path  FieldPath
	Role  FieldRole
	Value interface{}
}

// Dependency is one entry of a declared dependency list. Names is empty for
// entries that are not variable criteria (time ranges, literals).
type Dependency struct {
	Index int
	Names []string
	Raw   interface{}
}

// Classification is the cached structural fingerprint of a node.
type Classification struct {
	Kind      Kind
	Container bool
	// Variable is set for definitions and for ambiguous consumers, so that
	// the variable they introduce is not lost.
	Variable          *Variable
	Fields            []Field
	HasDependencyList bool
	Dependencies      []Dependency
	Issues            []Issue
}

// Declared returns the distinct variable names of the dependency list in
// declaration order.
func (c Classification) Declared() []string {
	seen := make(map[string]bool)
	var out []string
	for _, d := range c.Dependencies {
		for _, n := range d.Names {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	return out
}

// Checked reports whether the node's dependency list is subject to the
// consistency check.
func (c Classification) Checked() bool {
	return c.Kind == KindConsumer || (c.Kind == KindDefinition && c.HasDependencyList)
}

// Classify computes the classification of node. inDefinitionList is true when
// the node is an element of one of the schema's definition-list fields.
func (s Schema) Classify(node map[string]interface{}, inDefinitionList bool) Classification {
	var c Classification

	for _, f := range s.ChildFields {
		if _, ok := node[f].([]interface{}); ok {
			c.Container = true
			break
		}
	}

	name, hasName := node[s.NameField].(string)
	expr, hasExpr := node[s.ExpressionField]
	if expr == nil {
		hasExpr = false
	}
	_, hasDeps := node[s.DependencyField]
	fields := s.templatedFields(node)

	if hasDeps {
		c.HasDependencyList = true
		c.Dependencies, c.Issues = s.parseDependencies(node[s.DependencyField])
	}

	switch {
	case len(fields) > 0:
		c.Kind = KindConsumer
		c.Fields = fields
		if hasName && hasExpr {
			c.Issues = append(c.Issues, Issue{
				Kind:    IssueAmbiguous,
				Message: "node defines variable " + name + " and carries templated request fields",
			})
			c.Variable = s.variable(node, name, expr)
			c.Fields = append(c.Fields, Field{Path: FieldPath{s.ExpressionField}, Role: RoleExpression, Value: expr})
		}
	case hasName && (hasExpr || inDefinitionList):
		if strings.TrimSpace(name) == "" {
			c.Issues = append(c.Issues, Issue{Kind: IssueMalformed, Message: "definition has an empty name"})
			return c
		}
		c.Kind = KindDefinition
		c.Variable = s.variable(node, name, expr)
	case inDefinitionList && !hasName:
		c.Issues = append(c.Issues, Issue{Kind: IssueMalformed, Message: "definition list entry has no " + s.NameField})
	case hasExpr && (hasDeps || s.isStructuredRequest(expr)):
		c.Kind = KindConsumer
		c.Fields = []Field{{Path: FieldPath{s.ExpressionField}, Role: RoleExpression, Value: expr}}
	case hasDeps:
		c.Issues = append(c.Issues, Issue{
			Kind:    IssueMalformed,
			Message: "declares " + s.DependencyField + " but has no templated fields",
		})
	}

	return c
}

// IsActionContext reports whether key holds an action context object.
func (s Schema) IsActionContext(key string) bool {
	return contains(s.ActionContextFields, key)
}

// IsDefinitionList reports whether key holds a list of definitions.
func (s Schema) IsDefinitionList(key string) bool {
	return contains(s.DefinitionListFields, key)
}

// NewDependencyEntry builds a dependency list entry for name.
func (s Schema) NewDependencyEntry(name string) map[string]interface{} {
	entry := map[string]interface{}{
		s.DependencyValueField: template.Placeholder(name),
	}
	if s.DependencyTypeField != "" {
		entry[s.DependencyTypeField] = s.DependencyType
	}
	return entry
}

func (s Schema) variable(node map[string]interface{}, name string, expr interface{}) *Variable {
	shared, _ := node[s.SharedField].(bool)
	return &Variable{Name: name, Expression: expr, Shared: shared}
}

func (s Schema) templatedFields(node map[string]interface{}) []Field {
	var fields []Field
	collect := func(prefix FieldPath, obj map[string]interface{}) {
		for _, group := range []struct {
			names []string
			role  FieldRole
		}{
			{s.AddressFields, RoleAddress},
			{s.ParameterFields, RoleParameters},
			{s.BodyFields, RoleBody},
		} {
			for _, f := range group.names {
				v, ok := obj[f]
				if !ok {
					continue
				}
				p := append(append(FieldPath{}, prefix...), f)
				fields = append(fields, Field{Path: p, Role: group.role, Value: v})
			}
		}
	}

	collect(nil, node)
	for _, ctxField := range s.ActionContextFields {
		if ctx, ok := node[ctxField].(map[string]interface{}); ok {
			collect(FieldPath{ctxField}, ctx)
		}
	}
	return fields
}

func (s Schema) parseDependencies(raw interface{}) ([]Dependency, []Issue) {
	list, ok := raw.([]interface{})
	if !ok {
		if raw == nil {
			return nil, nil
		}
		return nil, []Issue{{Kind: IssueMalformed, Message: s.DependencyField + " is not a list"}}
	}

	var deps []Dependency
	var issues []Issue
	for i, item := range list {
		entry, ok := item.(map[string]interface{})
		if !ok {
			issues = append(issues, Issue{Kind: IssueMalformed, Message: s.DependencyField + " entry is not an object"})
			deps = append(deps, Dependency{Index: i, Raw: item})
			continue
		}
		dep := Dependency{Index: i, Raw: item}
		if t, ok := entry[s.DependencyTypeField].(string); ok && s.DependencyType != "" && t != s.DependencyType {
			deps = append(deps, dep)
			continue
		}
		value, ok := entry[s.DependencyValueField].(string)
		if !ok {
			issues = append(issues, Issue{Kind: IssueMalformed, Message: s.DependencyField + " entry has no string " + s.DependencyValueField})
			deps = append(deps, dep)
			continue
		}
		dep.Names = template.Scan(value)
		deps = append(deps, dep)
	}
	return deps, issues
}

// isStructuredRequest reports whether expr is a serialized object carrying
// request fields, such as a custom endpoint query.
func (s Schema) isStructuredRequest(expr interface{}) bool {
	str, ok := expr.(string)
	if !ok {
		return false
	}
	trimmed := strings.TrimSpace(str)
	if !strings.HasPrefix(trimmed, "{") {
		return false
	}
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		return false
	}
	return len(s.templatedFields(obj)) > 0
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
