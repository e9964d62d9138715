package document

import (
	"iter"
	"sort"
)

// Entry is one object reached by a walk, with its classification cached.
type Entry struct {
	Path Path
	Node map[string]interface{}
	Classification
	// Scope is the path of the nearest enclosing container, or the root.
	Scope Path
	// Absorbed is true when the node was reached through a consumer's action
	// context and is represented by that consumer.
	Absorbed bool
}

// Walker enumerates the objects of a document in pre-order.
type Walker struct {
	root   interface{}
	schema Schema
}

// NewWalker returns a walker over root using schema to classify nodes.
func NewWalker(root interface{}, schema Schema) *Walker {
	return &Walker{root: root, schema: schema}
}

// Entries returns a fresh sequence over the document. Object keys are visited
// in sorted order and list elements in index order, so two walks of the same
// document yield the same entries in the same order.
//
// The document must not be mutated while a sequence is being consumed.
func (w *Walker) Entries() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		w.visit(w.root, nil, nil, false, false, yield)
	}
}

// Collect materializes the walk.
func (w *Walker) Collect() []Entry {
	var entries []Entry
	for e := range w.Entries() {
		entries = append(entries, e)
	}
	return entries
}

func (w *Walker) visit(value interface{}, path, scope Path, inDefinitionList, absorbed bool, yield func(Entry) bool) bool {
	switch v := value.(type) {
	case map[string]interface{}:
		entry := Entry{Path: path, Node: v, Scope: scope, Absorbed: absorbed}
		if absorbed {
			entry.Classification = Classification{Kind: KindOther}
		} else {
			entry.Classification = w.schema.Classify(v, inDefinitionList)
		}
		if !yield(entry) {
			return false
		}

		childScope := scope
		if entry.Container {
			childScope = path
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			childAbsorbed := absorbed || (entry.Kind == KindConsumer && w.schema.IsActionContext(k))
			if !w.visit(v[k], path.Child(Key(k)), childScope, w.schema.IsDefinitionList(k), childAbsorbed, yield) {
				return false
			}
		}
	case []interface{}:
		for i, item := range v {
			if !w.visit(item, path.Child(Index(i)), scope, inDefinitionList, absorbed, yield) {
				return false
			}
		}
	}
	return true
}
