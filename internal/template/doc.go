// Package template finds and substitutes flat {Name} placeholders inside
// dashboard document values.
//
// A placeholder is an opening brace, one or more letters, digits or
// underscores, and a closing brace. Values may be strings, lists or maps
// nested to any depth. A string that is itself a serialized JSON object or
// array (for example a custom endpoint request stored in a query field) is
// decoded once and scanned structurally; if decoding fails the string is
// scanned as plain text.
//
//	names := template.Scan(`{"url":"https://{Host}/api","urlParams":[{"value":"{Tenant}"}]}`)
//	// names == []string{"Host", "Tenant"}
package template
