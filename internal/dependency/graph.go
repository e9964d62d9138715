// internal/dependency/graph.go
package dependency

// NodeID is the unique identifier for a node inside a dependency graph.
// For variable graphs it is the variable name.
type NodeID string

// Node represents a variable together with the variables its defining
// expression requires.
//
// A node can depend on zero or more other nodes. Edges to IDs that were never
// added as nodes are kept; they simply cannot take part in a cycle.
type Node struct {
	ID        NodeID
	DefinedAt string // path of the defining document node, informational
	Shared    bool
	DependsOn []NodeID
}

// Graph is a very small helper to answer dependency queries. It is *not*
// thread-safe by itself; callers must synchronise if they write concurrently.
//
// Nodes remember their insertion order, which is the order every traversal
// uses. That keeps cycle reports byte-identical between runs.
type Graph struct {
	nodes map[NodeID]*Node
	order []NodeID
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[NodeID]*Node)}
}

// AddNode adds (or replaces) a node in the graph. A replaced node keeps its
// original position in the traversal order.
func (g *Graph) AddNode(n Node) {
	if g.nodes == nil {
		g.nodes = make(map[NodeID]*Node)
	}
	// Copy to avoid external mutations
	copied := n
	copied.DependsOn = dedupe(n.DependsOn)
	if _, exists := g.nodes[n.ID]; !exists {
		g.order = append(g.order, n.ID)
	}
	g.nodes[n.ID] = &copied
}

// AddEdge records that from requires to. The from node is created when it
// does not exist yet. Duplicate edges are ignored.
func (g *Graph) AddEdge(from, to NodeID) {
	n, ok := g.nodes[from]
	if !ok {
		g.AddNode(Node{ID: from})
		n = g.nodes[from]
	}
	for _, dep := range n.DependsOn {
		if dep == to {
			return
		}
	}
	n.DependsOn = append(n.DependsOn, to)
}

// Get returns a pointer to the stored node or nil if it does not exist.
func (g *Graph) Get(id NodeID) *Node {
	return g.nodes[id]
}

// Has reports whether id was added as a node.
func (g *Graph) Has(id NodeID) bool {
	_, ok := g.nodes[id]
	return ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.order)
}

// IDs returns node IDs in insertion order.
func (g *Graph) IDs() []NodeID {
	ids := make([]NodeID, len(g.order))
	copy(ids, g.order)
	return ids
}

// Dependencies returns a slice of immediate dependency IDs for the given node.
func (g *Graph) Dependencies(id NodeID) []NodeID {
	if n, ok := g.nodes[id]; ok {
		// Return a copy to avoid callers modifying internal slice.
		depsCopy := make([]NodeID, len(n.DependsOn))
		copy(depsCopy, n.DependsOn)
		return depsCopy
	}
	return nil
}

// Dependents returns all node IDs that have a direct dependency on the given
// node, in insertion order. This is an O(n) walk; variable graphs are small.
func (g *Graph) Dependents(id NodeID) []NodeID {
	var res []NodeID
	for _, nid := range g.order {
		for _, dep := range g.nodes[nid].DependsOn {
			if dep == id {
				res = append(res, nid)
				break
			}
		}
	}
	return res
}

// DependsOnAny reports whether id, or anything it transitively requires, is
// contained in targets.
func (g *Graph) DependsOnAny(id NodeID, targets map[NodeID]bool) bool {
	if len(targets) == 0 {
		return false
	}
	visited := make(map[NodeID]bool)
	stack := []NodeID{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if targets[cur] {
			return true
		}
		if visited[cur] {
			continue
		}
		visited[cur] = true
		if n, ok := g.nodes[cur]; ok {
			stack = append(stack, n.DependsOn...)
		}
	}
	return false
}

// FromAdjacency builds a graph from a name -> requirements map. Keys are
// inserted in the order given by keys; requirements that are not keys become
// dangling edges.
func FromAdjacency(keys []string, adjacency map[string][]string) *Graph {
	g := New()
	for _, k := range keys {
		deps := make([]NodeID, 0, len(adjacency[k]))
		for _, d := range adjacency[k] {
			deps = append(deps, NodeID(d))
		}
		g.AddNode(Node{ID: NodeID(k), DependsOn: deps})
	}
	return g
}

func dedupe(ids []NodeID) []NodeID {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[NodeID]bool, len(ids))
	out := make([]NodeID, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
