package article

import (
	"fmt"
	"strings"
)

// WordsPerMinute is an average reading speed.
const WordsPerMinute = 200

// ReadTime estimates the reading duration of the given texts, joined with spaces.
// The result is rounded up to the whole minute, e.g. "2 min read".
func ReadTime(texts ...string) string {
	words := len(strings.Fields(strings.Join(texts, " ")))
	minutes := (words + WordsPerMinute - 1) / WordsPerMinute
	return fmt.Sprintf("%d min read", minutes)
}
