// Package dependency provides the variable dependency graph used by the
// consistency engine, and cycle detection over it.
//
// # Core Concepts
//
// Graph: A directed graph whose nodes are variables (dashboard parameters)
// and whose edges mean "requires": an edge ResourceGroup → FunctionApp says
// the ResourceGroup query cannot run until FunctionApp has a value.
//
// Node: Represents a variable in the graph with:
//   - ID: The variable name
//   - DefinedAt: Path of the document node that defines it
//   - Shared: Whether the variable is visible document-wide
//   - DependsOn: Variables its defining expression references
//
// # Cycles
//
// The graph is supposed to be acyclic. A cycle means none of its variables can
// ever resolve, which the host engine shows as a query stuck refreshing.
// DetectCycles reports every distinct cycle, not only the first one, because
// independent cycles in unrelated tabs of one document are common.
//
// Reports must be reproducible: traversal uses node insertion order and each
// cycle is rotated to start at its smallest name.
//
// # Usage Example
//
//	graph := dependency.New()
//	graph.AddNode(dependency.Node{ID: "X", DependsOn: []dependency.NodeID{"Y"}})
//	graph.AddNode(dependency.Node{ID: "Y", DependsOn: []dependency.NodeID{"X"}})
//
//	cycles := dependency.DetectCycles(graph)
//	// cycles == [][]string{{"X", "Y"}}
//
// # Thread Safety
//
// The Graph type is not thread-safe. It is built and queried by a single
// analysis pass.
package dependency
