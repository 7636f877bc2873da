package utils

import (
	"github.com/upfeed/upfeed/internal/constants"
)

// Snippet truncates post text for feed listings. Rune-based so multi-byte
// text is never cut mid-character.
func Snippet(text string) string {
	runes := []rune(text)
	if len(runes) <= constants.SnippetLength {
		return text
	}
	return string(runes[:constants.SnippetLength]) + "..."
}
