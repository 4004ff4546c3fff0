package validators

import "strings"

// SanitizeString collapses runs of whitespace and truncates to maxRunes
// characters so multi-byte product names are never split. maxRunes <= 0 keeps
// the full length.
func SanitizeString(input string, maxRunes int) string {
	cleaned := strings.Join(strings.Fields(input), " ")
	if maxRunes <= 0 {
		return cleaned
	}
	runes := []rune(cleaned)
	if len(runes) <= maxRunes {
		return cleaned
	}
	return string(runes[:maxRunes])
}
