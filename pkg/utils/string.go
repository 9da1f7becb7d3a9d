package utils

// Truncate shortens s to at most maxLen runes, appending an ellipsis when
// anything was cut. Reddit titles are routinely unicode, so the cut happens
// on rune boundaries rather than bytes.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
