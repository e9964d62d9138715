// Package document walks decoded dashboard documents and classifies their
// nodes.
//
// A document is the value produced by decoding JSON into interface{}: nested
// map[string]interface{}, []interface{} and scalars. Every object in the tree
// is a node. A Schema names the fields that make a node a variable
// definition, a consumer of variables, or a container of other nodes.
//
// The Walker yields every node in pre-order together with its Path and a
// cached Classification. Classification never fails: structural problems are
// attached to the entry as Issues and the walk continues.
//
//	w := document.NewWalker(doc, document.DefaultSchema())
//	for entry := range w.Entries() {
//		if entry.Kind == document.KindConsumer {
//			fmt.Println(entry.Path, entry.Declared())
//		}
//	}
package document
