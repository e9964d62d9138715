package analysis

import (
	"fmt"
	"strings"

	"wbdeps/internal/dependency"
	"wbdeps/internal/document"
	"wbdeps/internal/template"
	"wbdeps/pkg/logging"
)

// checkedNode is a node whose dependency list is compared against its
// references.
type checkedNode struct {
	entry      document.Entry
	references []string
	resolved   []dependency.NodeID
	declared   []string
	duplicates []string
}

// result holds one analysis pass over a document.
type result struct {
	opts       options
	entries    []document.Entry
	graph      *dependency.Graph
	checked    []checkedNode
	cycles     [][]string
	findings   []Finding
	unresolved []UnresolvedReference
	nodes      []NodeReport

	// defs maps a scope and variable name to the variable's graph node.
	defs map[string]dependency.NodeID

	// nodeAt maps the path of a defining node to its graph node.
	nodeAt map[string]dependency.NodeID

	// scopesOf lists the scopes each variable name is defined in.
	scopesOf map[string]map[string]bool

	unresolvedSeen map[string]bool
}

func build(doc interface{}, o options) *result {
	r := &result{
		opts:           o,
		graph:          dependency.New(),
		defs:           make(map[string]dependency.NodeID),
		nodeAt:         make(map[string]dependency.NodeID),
		scopesOf:       make(map[string]map[string]bool),
		unresolvedSeen: make(map[string]bool),
	}
	r.entries = document.NewWalker(doc, o.schema).Collect()

	for _, e := range r.entries {
		if e.Variable == nil {
			continue
		}
		if r.scopesOf[e.Variable.Name] == nil {
			r.scopesOf[e.Variable.Name] = make(map[string]bool)
		}
		r.scopesOf[e.Variable.Name][definitionScope(e)] = true
	}

	definedIn := make(map[string]string)
	for _, e := range r.entries {
		for _, issue := range e.Issues {
			r.addIssue(e, issue)
		}
		if e.Variable == nil {
			continue
		}
		r.define(e, definedIn)
	}

	for _, e := range r.entries {
		var refs []string
		if e.Checked() || e.Variable != nil {
			refs = references(e)
		}
		var resolved []dependency.NodeID
		for _, ref := range refs {
			if id, ok := r.resolve(e, ref); ok {
				resolved = append(resolved, id)
				continue
			}
			r.noteUnresolved(e, ref)
		}
		if e.Variable != nil {
			from := r.nodeAt[e.Path.String()]
			for _, dep := range union(refs, e.Declared()) {
				if to, ok := r.resolve(e, dep); ok {
					r.graph.AddEdge(from, to)
				}
			}
		}
		if e.Checked() {
			r.checked = append(r.checked, checkedNode{
				entry:      e,
				references: refs,
				resolved:   resolved,
				declared:   e.Declared(),
				duplicates: duplicates(e),
			})
		}
	}

	r.cycles = dependency.DetectCycles(r.graph)
	return r
}

func (r *result) addIssue(e document.Entry, issue document.Issue) {
	kind := FindingMalformedNode
	if issue.Kind == document.IssueAmbiguous {
		kind = FindingAmbiguous
		logging.Warn("Analysis", "Ambiguous node at %s treated as consumer: %s", e.Path, issue.Message)
	}
	f := Finding{Kind: kind, Path: e.Path.String(), Message: issue.Message}
	if e.Variable != nil {
		f.Variable = e.Variable.Name
	}
	r.findings = append(r.findings, f)
}

// define registers the variable introduced by e. A second definition of the
// same name in the same scope is reported; the first one stays authoritative
// for the graph.
func (r *result) define(e document.Entry, definedIn map[string]string) {
	v := e.Variable
	scope := definitionScope(e)
	key := scopedName(scope, v.Name)
	id := r.nodeID(scope, v.Name)
	if prior, ok := definedIn[key]; ok {
		r.findings = append(r.findings, Finding{
			Kind:     FindingDuplicateDefinition,
			Path:     e.Path.String(),
			Variable: v.Name,
			Message:  fmt.Sprintf("variable %s is already defined at %s", v.Name, prior),
		})
	} else {
		definedIn[key] = e.Path.String()
		r.defs[key] = id
	}

	r.nodeAt[e.Path.String()] = id
	if !r.graph.Has(id) {
		r.graph.AddNode(dependency.Node{ID: id, DefinedAt: e.Path.String(), Shared: v.Shared})
	}
	logging.Debug("Analysis", "Variable %s defined at %s as %s (shared=%t)", v.Name, e.Path, id, v.Shared)
}

// nodeID names the graph node of a variable. Names defined in a single scope,
// and root-scope definitions, keep the bare name; a local definition of a name
// that also exists elsewhere is qualified as Name@scope.
func (r *result) nodeID(scope, name string) dependency.NodeID {
	if scope == rootScope || len(r.scopesOf[name]) < 2 {
		return dependency.NodeID(name)
	}
	return dependency.NodeID(name + "@" + scope)
}

// resolve finds the definition of name visible from e: the nearest enclosing
// scope that defines it, up to the root, where shared variables live.
func (r *result) resolve(e document.Entry, name string) (dependency.NodeID, bool) {
	for i := len(e.Scope); i >= 0; i-- {
		if id, ok := r.defs[scopedName(e.Scope[:i].String(), name)]; ok {
			return id, true
		}
	}
	return "", false
}

// visible returns the subset of names that resolve from e.
func (r *result) visible(e document.Entry, names []string) map[string]bool {
	out := make(map[string]bool, len(names))
	for _, n := range names {
		if _, ok := r.resolve(e, n); ok {
			out[n] = true
		}
	}
	return out
}

func (r *result) noteUnresolved(e document.Entry, name string) {
	if r.opts.ignore[name] {
		return
	}
	key := e.Path.String() + "\x00" + name
	if r.unresolvedSeen[key] {
		return
	}
	r.unresolvedSeen[key] = true
	r.unresolved = append(r.unresolved, UnresolvedReference{Path: e.Path.String(), Variable: name})
}

const rootScope = "$"

// definitionScope is the scope a variable is registered in. Shared variables
// belong to the root.
func definitionScope(e document.Entry) string {
	if e.Variable.Shared {
		return rootScope
	}
	return e.Scope.String()
}

func scopedName(scope, name string) string {
	return scope + "\x00" + name
}

// variableName strips the scope qualifier from a graph node ID.
func variableName(id string) string {
	name, _, _ := strings.Cut(id, "@")
	return name
}

// references scans every templated field of e. Definitions without templated
// fields reference what their expression references.
func references(e document.Entry) []string {
	if len(e.Fields) == 0 {
		if e.Variable != nil {
			return template.Scan(e.Variable.Expression)
		}
		return []string{}
	}
	var refs []string
	for _, f := range e.Fields {
		refs = union(refs, template.Scan(f.Value))
	}
	if refs == nil {
		refs = []string{}
	}
	return refs
}

// duplicates returns names declared by more than one dependency entry.
func duplicates(e document.Entry) []string {
	count := make(map[string]int)
	var order []string
	for _, d := range e.Dependencies {
		seen := make(map[string]bool)
		for _, n := range d.Names {
			if seen[n] {
				continue
			}
			seen[n] = true
			if count[n] == 0 {
				order = append(order, n)
			}
			count[n]++
		}
	}
	var dups []string
	for _, n := range order {
		if count[n] > 1 {
			dups = append(dups, n)
		}
	}
	return dups
}

// union appends the names of b missing from a, keeping first-encounter order.
func union(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, n := range list {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	return out
}

func cycleKey(c []string) string {
	return strings.Join(c, "\x00")
}
