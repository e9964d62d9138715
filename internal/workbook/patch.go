package workbook

import (
	"encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"sigs.k8s.io/yaml"

	"wbdeps/internal/analysis"
)

// Operation is one RFC 6902 patch operation.
type Operation struct {
	Op    string      `json:"op"`
	Path  string      `json:"path"`
	Value interface{} `json:"value"`
}

// Operations converts repair edits to patch operations. Fields that did not
// exist before the edit are added, all others replaced.
func Operations(edits []analysis.Edit) []Operation {
	ops := make([]Operation, 0, len(edits))
	for _, e := range edits {
		op := "replace"
		if e.Created {
			op = "add"
		}
		ops = append(ops, Operation{Op: op, Path: e.Pointer, Value: e.New})
	}
	return ops
}

// BuildPatch renders edits as an indented JSON patch document.
func BuildPatch(edits []analysis.Edit) ([]byte, error) {
	b, err := json.MarshalIndent(Operations(edits), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode patch: %w", err)
	}
	return b, nil
}

// Patched returns the document's original bytes with edits applied, in the
// document's own format.
func (d *Document) Patched(edits []analysis.Edit) ([]byte, error) {
	patchJSON, err := BuildPatch(edits)
	if err != nil {
		return nil, err
	}
	patch, err := jsonpatch.DecodePatch(patchJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode patch: %w", err)
	}
	out, err := patch.ApplyIndent(d.raw, "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to apply patch to %s: %w", d.Path, err)
	}

	if d.Format == FormatYAML {
		converted, err := yaml.JSONToYAML(out)
		if err != nil {
			return nil, fmt.Errorf("failed to convert %s back to YAML: %w", d.Path, err)
		}
		return converted, nil
	}
	if len(out) > 0 && out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	return out, nil
}
