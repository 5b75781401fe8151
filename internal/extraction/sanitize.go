package extraction

import (
	"regexp"
	"strings"
)

// Matches fence markers with or without a language label (```json, ```).
var fenceMarker = regexp.MustCompile("(?i)```json|```")

// Sanitize strips markdown formatting artifacts from a raw model response
// and isolates the JSON object it should contain. All fence markers are
// removed, then the span from the first "{" to the last "}" is extracted.
// If no such span exists the trimmed text is returned as-is; validity is
// the next stage's problem, so Sanitize never fails.
//
// The span is greedy, not balance-aware: prose between the braces that
// itself contains "{" or "}" will corrupt the extraction. Known limitation.
func Sanitize(raw string) string {
	text := fenceMarker.ReplaceAllString(raw, "")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return strings.TrimSpace(text)
	}

	return text[start : end+1]
}
