package domain

import (
	"strings"
)

// NormalizeQuery prepares a user-supplied lexical query for lookup:
//   - trims leading/trailing whitespace
//   - converts to lowercase (no-op for kanji/kana, matters for romaji and
//     free-text meaning queries)
//   - compresses multiple spaces into one
//
// An empty result means the query is a no-op.
func NormalizeQuery(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	text = strings.ToLower(text)

	// Compress multiple spaces into one.
	var b strings.Builder
	b.Grow(len(text))
	prevSpace := false
	for _, r := range text {
		if r == ' ' {
			if prevSpace {
				continue
			}
			prevSpace = true
		} else {
			prevSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
