// Package strings holds small text helpers shared by the output formatters.
package strings

import (
	"strings"
)

// DefaultDescriptionMaxLen is the column width used for messages and name
// lists in table output.
const DefaultDescriptionMaxLen = 60

// MinTruncateLen is the smallest width TruncateDescription honours.
const MinTruncateLen = 4

// TruncateDescription collapses all whitespace in s to single spaces and cuts
// the result to maxLen runes, ending it with "..." when something was cut.
// maxLen below MinTruncateLen is raised to MinTruncateLen.
func TruncateDescription(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}

// JoinTruncated joins names with ", " and truncates the result. An empty list
// renders as "-".
func JoinTruncated(names []string, maxLen int) string {
	if len(names) == 0 {
		return "-"
	}
	return TruncateDescription(strings.Join(names, ", "), maxLen)
}
