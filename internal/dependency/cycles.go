package dependency

import "strings"

// DetectCycles returns every distinct elementary cycle in g.
//
// Nodes are first grouped into strongly connected components. Then, for each
// node in insertion order, a depth-first search follows edges in declaration
// order, staying inside the node's component and away from nodes inserted
// before it. Every path that returns to the start node is a cycle, and each
// cycle is found exactly once, from its earliest inserted member. Cycles are
// rotated to start at their lexicographically smallest name, keeping
// direction, so A→B→C→A is always [A B C].
func DetectCycles(g *Graph) [][]string {
	if g == nil {
		return nil
	}

	position := make(map[NodeID]int, len(g.order))
	for i, id := range g.order {
		position[id] = i
	}
	component := g.components()

	seen := make(map[string]bool)
	var cycles [][]string
	var path []NodeID
	onPath := make(map[NodeID]bool)

	for i, start := range g.order {
		var visit func(id NodeID)
		visit = func(id NodeID) {
			path = append(path, id)
			onPath[id] = true

			for _, dep := range g.nodes[id].DependsOn {
				if !g.Has(dep) || component[dep] != component[start] || position[dep] < i {
					continue
				}
				if dep == start {
					cycle := canonicalCycle(path)
					key := strings.Join(cycle, "\x00")
					if !seen[key] {
						seen[key] = true
						cycles = append(cycles, cycle)
					}
					continue
				}
				if !onPath[dep] {
					visit(dep)
				}
			}

			path = path[:len(path)-1]
			delete(onPath, id)
		}
		visit(start)
	}

	return cycles
}

// components labels every node with its strongly connected component
// (Tarjan). Edges to nodes outside the graph are ignored.
func (g *Graph) components() map[NodeID]int {
	index := make(map[NodeID]int, len(g.order))
	low := make(map[NodeID]int, len(g.order))
	onStack := make(map[NodeID]bool)
	component := make(map[NodeID]int, len(g.order))
	var stack []NodeID
	next, count := 0, 0

	var connect func(v NodeID)
	connect = func(v NodeID) {
		index[v] = next
		low[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.nodes[v].DependsOn {
			if !g.Has(w) {
				continue
			}
			if _, visited := index[w]; !visited {
				connect(w)
				low[v] = min(low[v], low[w])
			} else if onStack[w] {
				low[v] = min(low[v], index[w])
			}
		}

		if low[v] == index[v] {
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				component[w] = count
				if w == v {
					break
				}
			}
			count++
		}
	}

	for _, id := range g.order {
		if _, visited := index[id]; !visited {
			connect(id)
		}
	}
	return component
}

// CyclicNodes returns the set of nodes that appear in any of cycles.
func CyclicNodes(cycles [][]string) map[NodeID]bool {
	set := make(map[NodeID]bool)
	for _, c := range cycles {
		for _, name := range c {
			set[NodeID(name)] = true
		}
	}
	return set
}

// canonicalCycle rotates path so it starts at its smallest member.
func canonicalCycle(path []NodeID) []string {
	start := 0
	for i := range path {
		if path[i] < path[start] {
			start = i
		}
	}
	out := make([]string, 0, len(path))
	for i := range path {
		out = append(out, string(path[(start+i)%len(path)]))
	}
	return out
}
