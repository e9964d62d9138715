// Package analysis checks and repairs the declared dependency lists of a
// dashboard document.
//
// Analyze walks the document once, builds the variable graph from definition
// nodes, detects cycles, and compares every consumer's declared dependency
// list with the placeholders its templated fields actually reference:
//
//	missing = references - declared   (under-declared, a defect)
//	extra   = declared - references   (over-declared, harmless)
//
// Consumers that reference a variable on or behind a cycle are reported as
// unresolvable instead.
//
// Repair computes edits on a private copy of the document, verifies that the
// copy has no cycle the original lacked, and only then writes the surviving
// edits into the caller's document. The run moves through the states
//
//	Scanned -> Checked -> NoActionNeeded | RepairsStaged -> RepairsApplied
//
// Neither function returns an error. Structural problems are findings in the
// report, and an empty document yields an empty report.
package analysis
