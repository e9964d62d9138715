package analysis

import (
	"fmt"
	"strings"

	"wbdeps/internal/dependency"
)

// check classifies every checked node. A node referencing a variable that
// sits on, or depends on, a cycle can never load; it is reported as
// unresolvable and not compared further.
func (r *result) check() {
	cyclic := dependency.CyclicNodes(r.cycles)
	r.nodes = make([]NodeReport, 0, len(r.checked))

	for _, c := range r.checked {
		nr := NodeReport{
			Path:       c.entry.Path.String(),
			Kind:       c.entry.Kind.String(),
			Declared:   nonNil(c.declared),
			References: nonNil(c.references),
			Missing:    []string{},
			Extra:      []string{},
			Duplicates: c.duplicates,
		}
		if c.entry.Variable != nil {
			nr.Name = c.entry.Variable.Name
		}

		if r.blocked(c.resolved, cyclic) {
			nr.Classification = Unresolvable
		} else {
			nr.Missing = difference(c.references, c.declared)
			nr.Extra = difference(c.declared, c.references)
			switch {
			case len(nr.Missing) > 0:
				nr.Classification = UnderDeclared
			case len(nr.Extra) > 0:
				nr.Classification = OverDeclared
			default:
				nr.Classification = Consistent
			}
		}

		for _, d := range c.duplicates {
			r.findings = append(r.findings, Finding{
				Kind:     FindingDuplicateDependency,
				Path:     nr.Path,
				Variable: d,
				Message:  fmt.Sprintf("%s is declared more than once", d),
			})
		}
		r.nodes = append(r.nodes, nr)
	}
}

func (r *result) blocked(refs []dependency.NodeID, cyclic map[dependency.NodeID]bool) bool {
	if len(cyclic) == 0 {
		return false
	}
	for _, id := range refs {
		if r.graph.DependsOnAny(id, cyclic) {
			return true
		}
	}
	return false
}

// report assembles the public report for this pass.
func (r *result) report(state State) *Report {
	rep := newReport()
	rep.State = state
	rep.Nodes = append(rep.Nodes, r.nodes...)
	rep.UnresolvedReferences = append(rep.UnresolvedReferences, r.unresolved...)
	rep.Findings = append(rep.Findings, r.findings...)

	for _, c := range r.cycles {
		rep.Cycles = append(rep.Cycles, c)
		f := Finding{
			Kind:     FindingCycle,
			Variable: variableName(c[0]),
			Message:  "dependency cycle " + strings.Join(append(append([]string{}, c...), c[0]), " -> "),
		}
		if n := r.graph.Get(dependency.NodeID(c[0])); n != nil {
			f.Path = n.DefinedAt
		}
		rep.Findings = append(rep.Findings, f)
	}

	rep.summarize()
	return rep
}

// difference returns the members of a not in b, in a's order.
func difference(a, b []string) []string {
	in := make(map[string]bool, len(b))
	for _, n := range b {
		in[n] = true
	}
	out := []string{}
	for _, n := range a {
		if !in[n] {
			out = append(out, n)
		}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
