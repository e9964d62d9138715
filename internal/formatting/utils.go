package formatting

import (
	"encoding/json"
	"fmt"
	"strings"

	"wbdeps/internal/analysis"
)

// PrettyJSON formats any value as indented JSON for human-readable display.
// It handles marshaling errors gracefully by falling back to fmt.Sprintf.
//
// Example:
//
//	data := map[string]interface{}{"name": "test", "value": 42}
//	fmt.Println(formatting.PrettyJSON(data))
//	// Output:
//	// {
//	//   "name": "test",
//	//   "value": 42
//	// }
func PrettyJSON(v interface{}) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// CyclePath renders a cycle closed on its first member, e.g. "X -> Y -> X".
func CyclePath(cycle []string) string {
	if len(cycle) == 0 {
		return ""
	}
	return strings.Join(append(append([]string{}, cycle...), cycle[0]), " -> ")
}

// SummaryLine renders the one-line summary of a report.
func SummaryLine(r *analysis.Report) string {
	s := r.Summary
	line := fmt.Sprintf("%d nodes: %d consistent, %d under-declared, %d over-declared, %d unresolvable; %d cycles, %d unresolved references",
		s.Nodes, s.Consistent, s.UnderDeclared, s.OverDeclared, s.Unresolvable, s.Cycles, s.Unresolved)
	if s.Repairs > 0 {
		line += fmt.Sprintf("; %d repairs applied", s.Repairs)
	}
	return line
}

// documentOutput is the serialized form of a DocumentResult.
type documentOutput struct {
	File            string `json:"file" yaml:"file"`
	Defects         bool   `json:"defects" yaml:"defects"`
	analysis.Report `json:",inline" yaml:",inline"`
}

type documentError struct {
	File  string `json:"file" yaml:"file"`
	Error string `json:"error" yaml:"error"`
}

// serializable converts results for JSON and YAML output. A single result is
// rendered as an object, several as a list.
func serializable(results []DocumentResult) interface{} {
	out := make([]interface{}, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			out = append(out, documentError{File: r.File, Error: r.Err.Error()})
			continue
		}
		out = append(out, documentOutput{File: r.File, Defects: r.Report.HasDefects(), Report: *r.Report})
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}
