package template

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Engine extracts and substitutes flat {Name} placeholders in document values.
type Engine struct {
	// Pattern to match placeholders like {VariableName}
	placeholderPattern *regexp.Regexp
}

// New creates a new template engine
func New() *Engine {
	return &Engine{
		placeholderPattern: regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`),
	}
}

var defaultEngine = New()

// Scan returns the distinct variable names referenced anywhere in value,
// using the package default engine.
func Scan(value interface{}) []string {
	return defaultEngine.ExtractVariables(value)
}

// Placeholder renders name in placeholder form, e.g. "{TenantId}".
func Placeholder(name string) string {
	return "{" + name + "}"
}

// ExtractVariables extracts all variable names from a value in first-encounter
// order. Map keys are visited in sorted order so the result is stable.
func (e *Engine) ExtractVariables(value interface{}) []string {
	seen := make(map[string]bool)
	result := []string{}
	e.extractVariablesRecursive(value, true, seen, &result)
	return result
}

// extractVariablesRecursive recursively extracts variables from any value type.
// decode controls whether strings holding serialized JSON are expanded; it is
// switched off below the first decoded level.
func (e *Engine) extractVariablesRecursive(value interface{}, decode bool, seen map[string]bool, result *[]string) {
	switch v := value.(type) {
	case string:
		if decode {
			if nested, ok := decodeEmbedded(v); ok {
				e.extractVariablesRecursive(nested, false, seen, result)
				return
			}
		}
		for _, match := range e.placeholderPattern.FindAllStringSubmatch(v, -1) {
			if len(match) < 2 || seen[match[1]] {
				continue
			}
			seen[match[1]] = true
			*result = append(*result, match[1])
		}
	case map[string]interface{}:
		for _, key := range sortedKeys(v) {
			e.extractVariablesRecursive(v[key], decode, seen, result)
		}
	case []interface{}:
		for _, val := range v {
			e.extractVariablesRecursive(val, decode, seen, result)
		}
	case []map[string]interface{}:
		for _, val := range v {
			e.extractVariablesRecursive(val, decode, seen, result)
		}
	case []string:
		for _, val := range v {
			e.extractVariablesRecursive(val, decode, seen, result)
		}
	}
}

// ContainsVariable reports whether value references name.
func (e *Engine) ContainsVariable(value interface{}, name string) bool {
	for _, v := range e.ExtractVariables(value) {
		if v == name {
			return true
		}
	}
	return false
}

// Replace substitutes placeholders found in value with entries from vars.
// Placeholders without an entry are left untouched. Strings holding
// serialized JSON are replaced textually, which keeps their encoding intact.
func (e *Engine) Replace(value interface{}, vars map[string]string) interface{} {
	switch v := value.(type) {
	case string:
		return e.replaceString(v, vars)
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for key, val := range v {
			result[key] = e.Replace(val, vars)
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, val := range v {
			result[i] = e.Replace(val, vars)
		}
		return result
	default:
		return value
	}
}

func (e *Engine) replaceString(s string, vars map[string]string) string {
	return e.placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := match[1 : len(match)-1]
		if replacement, ok := vars[name]; ok {
			return replacement
		}
		return match
	})
}

// ValidateDefined ensures every variable referenced by value is in defined.
func (e *Engine) ValidateDefined(value interface{}, defined map[string]bool) error {
	var missingVars []string
	for _, varName := range e.ExtractVariables(value) {
		if !defined[varName] {
			missingVars = append(missingVars, varName)
		}
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("undefined variables: %s", strings.Join(missingVars, ", "))
	}

	return nil
}

// decodeEmbedded decodes s when it is a serialized JSON object or array.
func decodeEmbedded(s string) (interface{}, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || (trimmed[0] != '{' && trimmed[0] != '[') {
		return nil, false
	}
	if !json.Valid([]byte(trimmed)) {
		return nil, false
	}
	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.UseNumber()
	var out interface{}
	if err := dec.Decode(&out); err != nil {
		return nil, false
	}
	return out, true
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
