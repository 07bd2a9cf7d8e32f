package rendering

import (
	"regexp"
	"strings"
)

// Finding is one line of a gap analysis.
type Finding struct {
	Text string `json:"text"`
	HTML string `json:"html"`
}

// A marker must be followed by whitespace or end the line, so a leading
// **bold** span keeps its asterisks.
var gapMarker = regexp.MustCompile(`^[-•*](\s+|$)`)

// RenderGaps splits a gap analysis into findings, one per non-empty line,
// in source order.
func RenderGaps(text string) []Finding {
	findings := []Finding{}
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(gapMarker.ReplaceAllString(strings.TrimSpace(raw), ""))
		if line == "" {
			continue
		}
		findings = append(findings, Finding{Text: line, HTML: InlineHTML(line)})
	}
	return findings
}
