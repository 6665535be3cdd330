// Package preview shortens extracted text for display.
package preview

import "strings"

// DefaultLength is the preview length used when none is configured.
const DefaultLength = 100

const (
	emptyPlaceholder = "(empty)"
	ellipsis         = "..."
)

// Text trims text and cuts it to at most maxLength characters, appending an
// ellipsis when something was cut. Empty text is shown as "(empty)".
// A negative maxLength is treated as zero.
func Text(text string, maxLength int) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return emptyPlaceholder
	}

	if maxLength < 0 {
		maxLength = 0
	}

	runes := []rune(trimmed)
	if len(runes) <= maxLength {
		return trimmed
	}
	return string(runes[:maxLength]) + ellipsis
}
