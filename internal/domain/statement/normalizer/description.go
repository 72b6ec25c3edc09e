package normalizer

import (
	"regexp"
	"strings"
)

var (
	descriptionNoise = regexp.MustCompile(`[^\p{L}\p{N}_\s\-\.]`)
	whitespaceRun    = regexp.MustCompile(`\s+`)
)

// CleanDescription replaces punctuation noise with spaces and collapses
// whitespace. Letters, digits, '_', '-' and '.' are kept.
func CleanDescription(s string) string {
	s = descriptionNoise.ReplaceAllString(s, " ")
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
