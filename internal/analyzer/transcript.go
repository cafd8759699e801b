package analyzer

import (
	"regexp"
	"strings"
)

var (
	inlineTagPattern = regexp.MustCompile(`<[^>]*>`)
	cueNumberPattern = regexp.MustCompile(`^\d+$`)
)

// parseVTT reduces a WebVTT subtitle document to plain transcript text:
// header and metadata lines are dropped, cue timing lines are dropped,
// inline markup is stripped, whitespace is collapsed and the result is
// truncated to maxLen characters.
func parseVTT(content string, maxLen int) string {
	var parts []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "WEBVTT") ||
			strings.HasPrefix(line, "Kind:") ||
			strings.HasPrefix(line, "Language:") ||
			strings.HasPrefix(line, "NOTE") ||
			strings.HasPrefix(line, "STYLE") {
			continue
		}
		if strings.Contains(line, "-->") || cueNumberPattern.MatchString(line) {
			continue
		}

		line = inlineTagPattern.ReplaceAllString(line, "")
		if fields := strings.Fields(line); len(fields) > 0 {
			parts = append(parts, strings.Join(fields, " "))
		}
	}

	text := strings.Join(parts, " ")
	if len(text) > maxLen {
		text = text[:maxLen]
	}
	return text
}
