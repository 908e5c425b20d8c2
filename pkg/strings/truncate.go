package strings

import (
	"strings"
)

// DefaultDescriptionMaxLen is the maximum length ability descriptions are
// reduced to in list and search summaries.
const DefaultDescriptionMaxLen = 120

// MinTruncateLen is the smallest maxLen TruncateDescription accepts; anything
// shorter leaves no room for content plus "...".
const MinTruncateLen = 4

// TruncateDescription reduces a description to a single line of at most maxLen
// characters. Newlines and runs of whitespace collapse to single spaces and
// "..." marks truncation. Operates on runes so multi-byte characters are never
// split.
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
