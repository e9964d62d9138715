package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/runtime"

	"wbdeps/internal/dependency"
	"wbdeps/internal/document"
	"wbdeps/pkg/logging"
)

// stagedEdit is a repair computed on the working copy and not yet applied to
// the caller's document.
type stagedEdit struct {
	path  document.Path
	field document.FieldPath
	old   interface{}
	new   interface{}
	// created is set when the field did not exist before the edit.
	created bool
	// defines is the variable whose edges the edit can change, if any, and
	// node its graph node.
	defines string
	node    dependency.NodeID
}

func (s stagedEdit) export() Edit {
	return Edit{
		Path:    s.path.String(),
		Field:   s.field.String(),
		Pointer: s.path.Pointer() + s.field.Pointer(),
		Old:     s.old,
		New:     s.new,
		Created: s.created,
	}
}

func (s stagedEdit) apply(doc interface{}, value interface{}) error {
	node, err := s.path.ResolveNode(doc)
	if err != nil {
		return err
	}
	return s.field.Set(node, value)
}

func (s stagedEdit) revert(doc interface{}) error {
	node, err := s.path.ResolveNode(doc)
	if err != nil {
		return err
	}
	if s.created {
		s.field.Delete(node)
		return nil
	}
	return s.field.Set(node, s.old)
}

// Repair brings the dependency lists of doc in line with their references,
// as far as policy allows, and modifies doc in place.
//
// Every edit is first staged on a private copy. The copy is analyzed again
// before anything is committed, and edits that would create a cycle the
// original document did not have are dropped with a repair-conflict finding.
// Running Repair on its own output stages nothing.
func Repair(doc interface{}, policy Policy, opts ...Option) *Report {
	o := newOptions(opts)
	original := build(doc, o)
	original.check()

	staged, err := cloneDocument(doc)
	if err != nil {
		rep := original.report(StateChecked)
		rep.Findings = append(rep.Findings, Finding{
			Kind:    FindingRepairConflict,
			Message: fmt.Sprintf("document could not be copied for staging: %v", err),
		})
		rep.summarize()
		return rep
	}

	var edits []stagedEdit
	var findings []Finding
	required := map[string][]string{}

	if policy.Canonicalize && len(o.rules) > 0 {
		var canonical []stagedEdit
		canonical, findings, required = canonicalize(build(staged, o), o.rules)
		for _, ed := range canonical {
			if err := ed.apply(staged, ed.new); err != nil {
				logging.Warn("Repair", "Could not stage %s at %s: %v", ed.field, ed.path, err)
				continue
			}
			edits = append(edits, ed)
		}
	}

	current := build(staged, o)
	current.check()
	for _, ed := range dependencyEdits(current, policy, required) {
		if err := ed.apply(staged, ed.new); err != nil {
			logging.Warn("Repair", "Could not stage %s at %s: %v", ed.field, ed.path, err)
			continue
		}
		edits = append(edits, ed)
	}

	if len(edits) == 0 {
		rep := original.report(StateNoActionNeeded)
		rep.Findings = append(rep.Findings, findings...)
		rep.summarize()
		return rep
	}
	logging.Debug("Repair", "State %s: %d edits", StateRepairsStaged, len(edits))

	edits, conflicts := verifyStaged(staged, edits, original.cycles, o)
	findings = append(findings, conflicts...)

	applied, err := commit(doc, edits)
	if err != nil {
		logging.Error("Repair", err, "Committed none of %d repairs", len(edits))
		findings = append(findings, Finding{
			Kind:    FindingRepairConflict,
			Message: fmt.Sprintf("no repairs committed: %v", err),
		})
	}

	state := StateRepairsApplied
	if len(applied) == 0 {
		state = StateNoActionNeeded
	}
	final := build(doc, o)
	final.check()
	rep := final.report(state)
	rep.Findings = append(rep.Findings, findings...)
	rep.RepairsApplied = append(rep.RepairsApplied, applied...)
	rep.summarize()
	logging.Info("Repair", "Applied %d repairs", len(applied))
	return rep
}

// dependencyEdits computes the new dependency list of every checked node of
// r. Unresolvable nodes and nodes whose list is not a list are left alone.
func dependencyEdits(r *result, policy Policy, required map[string][]string) []stagedEdit {
	schema := r.opts.schema
	var edits []stagedEdit

	for i, c := range r.checked {
		nr := r.nodes[i]
		if nr.Classification == Unresolvable {
			continue
		}
		e := c.entry
		raw, exists := e.Node[schema.DependencyField]
		var current []interface{}
		if raw != nil {
			list, ok := raw.([]interface{})
			if !ok {
				continue
			}
			current = list
		}

		extra := make(map[string]bool)
		if policy.RemoveExtra {
			for _, n := range nr.Extra {
				extra[n] = true
			}
		}

		changed := false
		next := make([]interface{}, 0, len(current)+len(nr.Missing))
		seen := make(map[string]bool)
		for _, dep := range e.Dependencies {
			if len(dep.Names) > 0 {
				if policy.DropDuplicates && allIn(dep.Names, seen) {
					changed = true
					continue
				}
				if policy.RemoveExtra && allIn(dep.Names, extra) {
					changed = true
					continue
				}
				for _, n := range dep.Names {
					seen[n] = true
				}
			}
			next = append(next, dep.Raw)
		}

		missing := nr.Missing
		if !policy.AddMissing {
			missing = intersect(nr.Missing, required[nr.Path])
		}
		for _, n := range missing {
			next = append(next, schema.NewDependencyEntry(n))
			changed = true
		}

		if !changed {
			continue
		}
		edits = append(edits, stagedEdit{
			path:    e.Path,
			field:   document.FieldPath{schema.DependencyField},
			old:     raw,
			new:     next,
			created: !exists,
			defines: definedName(e),
			node:    r.nodeAt[e.Path.String()],
		})
	}
	return edits
}

// verifyStaged re-analyzes the staged copy and reverts edits that introduce
// new cycles. Only edits on nodes defining a variable can change the graph,
// so the edits of variables on a new cycle are the ones dropped.
func verifyStaged(staged interface{}, edits []stagedEdit, before [][]string, o options) ([]stagedEdit, []Finding) {
	known := make(map[string]bool, len(before))
	for _, c := range before {
		known[cycleKey(c)] = true
	}

	var findings []Finding
	for {
		var introduced [][]string
		for _, c := range build(staged, o).cycles {
			if !known[cycleKey(c)] {
				introduced = append(introduced, c)
			}
		}
		if len(introduced) == 0 {
			return edits, findings
		}

		cyclic := dependency.CyclicNodes(introduced)
		var kept []stagedEdit
		for i := len(edits) - 1; i >= 0; i-- {
			ed := edits[i]
			if ed.node == "" || !cyclic[ed.node] {
				kept = append([]stagedEdit{ed}, kept...)
				continue
			}
			if err := ed.revert(staged); err != nil {
				logging.Error("Repair", err, "Failed to revert staged edit at %s", ed.path)
			}
			logging.Warn("Repair", "Dropping edit to %s at %s: it would close cycle %s", ed.field, ed.path, describe(introduced))
			findings = append(findings, Finding{
				Kind:     FindingRepairConflict,
				Path:     ed.path.String(),
				Variable: ed.defines,
				Message:  fmt.Sprintf("edit to %s dropped: it would introduce cycle %s", ed.field, describe(introduced)),
			})
		}

		if len(kept) == len(edits) {
			// No edit could be blamed; commit nothing.
			for i := len(edits) - 1; i >= 0; i-- {
				_ = edits[i].revert(staged)
			}
			findings = append(findings, Finding{
				Kind:    FindingRepairConflict,
				Message: fmt.Sprintf("all repairs dropped: staged document has new cycle %s", describe(introduced)),
			})
			return nil, findings
		}
		edits = kept
	}
}

// commit applies edits to doc. Either every edit is applied, or the ones
// already applied are reverted and doc is left as it was.
func commit(doc interface{}, edits []stagedEdit) ([]Edit, error) {
	applied := make([]Edit, 0, len(edits))
	for i, ed := range edits {
		value, err := cloneDocument(ed.new)
		if err == nil {
			err = ed.apply(doc, value)
		}
		if err != nil {
			for j := i - 1; j >= 0; j-- {
				if rerr := edits[j].revert(doc); rerr != nil {
					logging.Error("Repair", rerr, "Failed to revert %s at %s", edits[j].field, edits[j].path)
				}
			}
			return nil, fmt.Errorf("edit to %s at %s could not be applied: %w", ed.field, ed.path, err)
		}
		applied = append(applied, ed.export())
	}
	return applied, nil
}

// cloneDocument deep-copies a decoded JSON value. Values that did not come
// from encoding/json are copied through a JSON round trip.
func cloneDocument(doc interface{}) (out interface{}, err error) {
	defer func() {
		if recover() != nil {
			out, err = roundTrip(doc)
		}
	}()
	return runtime.DeepCopyJSONValue(doc), nil
}

func roundTrip(v interface{}) (interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out interface{}
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func describe(cycles [][]string) string {
	parts := make([]string, 0, len(cycles))
	for _, c := range cycles {
		parts = append(parts, strings.Join(append(append([]string{}, c...), c[0]), " -> "))
	}
	return strings.Join(parts, ", ")
}

func allIn(names []string, set map[string]bool) bool {
	for _, n := range names {
		if !set[n] {
			return false
		}
	}
	return true
}

func intersect(a, b []string) []string {
	in := make(map[string]bool, len(b))
	for _, n := range b {
		in[n] = true
	}
	var out []string
	for _, n := range a {
		if in[n] {
			out = append(out, n)
		}
	}
	return out
}
