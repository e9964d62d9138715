// Package workbook reads dashboard documents from disk and writes repairs
// back to them.
//
// Documents are JSON or YAML. Both are decoded into the generic tree the
// analysis package works on, with numbers kept as json.Number so that
// values survive a round trip unchanged.
//
// Repairs are written as RFC 6902 JSON patches applied to the original
// bytes, so keys and formatting the repair did not touch are preserved
// for JSON documents. Files are replaced atomically.
package workbook
