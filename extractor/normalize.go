package extractor

import (
	"regexp"
	"strings"
)

// MinContentLength is the minimum normalized text length, in runes,
// considered a successful extraction. Anything shorter (an image-only PDF,
// OCR noise) is treated as unreadable rather than handed to the scorer.
const MinContentLength = 20

var (
	spaceRuns    = regexp.MustCompile(`[ \t]+`)
	newlineEdges = regexp.MustCompile(` *\n *`)
	newlineRuns  = regexp.MustCompile(`\n{3,}`)
)

// Normalize collapses whitespace so the scorer sees format-independent
// input: runs of spaces and tabs become a single space, three or more
// consecutive newlines become exactly two, and leading/trailing whitespace
// is trimmed. The result is a fixed point: normalizing twice changes
// nothing.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = spaceRuns.ReplaceAllString(s, " ")
	s = newlineEdges.ReplaceAllString(s, "\n")
	s = newlineRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
