package analysis

// State is the phase an analysis run has reached.
type State string

const (
	StateScanned        State = "scanned"
	StateChecked        State = "checked"
	StateNoActionNeeded State = "no-action-needed"
	StateRepairsStaged  State = "repairs-staged"
	StateRepairsApplied State = "repairs-applied"
)

// Classification is the consistency verdict for one node.
type Classification string

const (
	Consistent    Classification = "consistent"
	UnderDeclared Classification = "under-declared"
	OverDeclared  Classification = "over-declared"
	Unresolvable  Classification = "unresolvable"
)

// FindingKind names a non-fatal problem recorded during a run.
type FindingKind string

const (
	FindingMalformedNode           FindingKind = "malformed-node"
	FindingAmbiguous               FindingKind = "ambiguous-classification"
	FindingCycle                   FindingKind = "cycle-detected"
	FindingRepairConflict          FindingKind = "repair-conflict"
	FindingDuplicateDefinition     FindingKind = "duplicate-definition"
	FindingDuplicateDependency     FindingKind = "duplicate-dependency"
	FindingCanonicalizationSkipped FindingKind = "canonicalization-skipped"
)

// NodeReport is the consistency result for one checked node.
type NodeReport struct {
	Path           string         `json:"path" yaml:"path"`
	Name           string         `json:"name,omitempty" yaml:"name,omitempty"`
	Kind           string         `json:"kind" yaml:"kind"`
	Classification Classification `json:"classification" yaml:"classification"`
	Declared       []string       `json:"declared" yaml:"declared"`
	References     []string       `json:"references" yaml:"references"`
	Missing        []string       `json:"missing" yaml:"missing"`
	Extra          []string       `json:"extra" yaml:"extra"`
	Duplicates     []string       `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`
}

// UnresolvedReference is a placeholder naming a variable no node defines.
type UnresolvedReference struct {
	Path     string `json:"path" yaml:"path"`
	Variable string `json:"variable" yaml:"variable"`
}

// Finding is a non-fatal problem tied to a node or variable.
type Finding struct {
	Kind     FindingKind `json:"kind" yaml:"kind"`
	Path     string      `json:"path,omitempty" yaml:"path,omitempty"`
	Variable string      `json:"variable,omitempty" yaml:"variable,omitempty"`
	Message  string      `json:"message" yaml:"message"`
}

// Edit is one applied repair. Created is set when the field did not exist
// before; Old is then nil.
type Edit struct {
	Path    string      `json:"path" yaml:"path"`
	Field   string      `json:"field" yaml:"field"`
	Pointer string      `json:"pointer" yaml:"pointer"`
	Old     interface{} `json:"old" yaml:"old"`
	New     interface{} `json:"new" yaml:"new"`
	Created bool        `json:"created,omitempty" yaml:"created,omitempty"`
}

// Summary counts the report contents.
type Summary struct {
	Nodes         int `json:"nodes" yaml:"nodes"`
	Consistent    int `json:"consistent" yaml:"consistent"`
	UnderDeclared int `json:"underDeclared" yaml:"underDeclared"`
	OverDeclared  int `json:"overDeclared" yaml:"overDeclared"`
	Unresolvable  int `json:"unresolvable" yaml:"unresolvable"`
	Cycles        int `json:"cycles" yaml:"cycles"`
	Unresolved    int `json:"unresolved" yaml:"unresolved"`
	Findings      int `json:"findings" yaml:"findings"`
	Repairs       int `json:"repairs" yaml:"repairs"`
}

// Report is the result of Analyze or Repair. Every list is in document walk
// order, so reports of the same document are identical.
type Report struct {
	State                State                 `json:"state" yaml:"state"`
	Cycles               [][]string            `json:"cycles" yaml:"cycles"`
	Nodes                []NodeReport          `json:"nodes" yaml:"nodes"`
	UnresolvedReferences []UnresolvedReference `json:"unresolvedReferences" yaml:"unresolvedReferences"`
	Findings             []Finding             `json:"findings" yaml:"findings"`
	RepairsApplied       []Edit                `json:"repairsApplied" yaml:"repairsApplied"`
	Summary              Summary               `json:"summary" yaml:"summary"`
}

func newReport() *Report {
	return &Report{
		State:                StateScanned,
		Cycles:               [][]string{},
		Nodes:                []NodeReport{},
		UnresolvedReferences: []UnresolvedReference{},
		Findings:             []Finding{},
		RepairsApplied:       []Edit{},
	}
}

// HasDefects reports whether the document needs attention: a cycle, an
// under-declared or unresolvable node, a duplicate dependency, a malformed
// node or a rejected repair. Over-declared nodes and unresolved references
// alone are not defects.
func (r *Report) HasDefects() bool {
	if len(r.Cycles) > 0 {
		return true
	}
	for _, n := range r.Nodes {
		if n.Classification == UnderDeclared || n.Classification == Unresolvable || len(n.Duplicates) > 0 {
			return true
		}
	}
	for _, f := range r.Findings {
		switch f.Kind {
		case FindingMalformedNode, FindingRepairConflict:
			return true
		}
	}
	return false
}

// Node returns the report for the node at path, or nil.
func (r *Report) Node(path string) *NodeReport {
	for i := range r.Nodes {
		if r.Nodes[i].Path == path {
			return &r.Nodes[i]
		}
	}
	return nil
}

func (r *Report) summarize() {
	s := Summary{
		Nodes:      len(r.Nodes),
		Cycles:     len(r.Cycles),
		Unresolved: len(r.UnresolvedReferences),
		Findings:   len(r.Findings),
		Repairs:    len(r.RepairsApplied),
	}
	for _, n := range r.Nodes {
		switch n.Classification {
		case Consistent:
			s.Consistent++
		case UnderDeclared:
			s.UnderDeclared++
		case OverDeclared:
			s.OverDeclared++
		case Unresolvable:
			s.Unresolvable++
		}
	}
	r.Summary = s
}
