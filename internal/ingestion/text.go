// Package ingestion turns uploaded documents and job pages into plain text
// suitable for a tailoring request.
package ingestion

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	innerSpace  = regexp.MustCompile(`[ \t\f\v\x{00A0}]+`)
	blankRuns   = regexp.MustCompile(`\n{3,}`)
	bulletGlyph = regexp.MustCompile(`^[•·▪‣◦●]\s*`)
)

// CleanText normalizes line endings, collapses runs of spaces inside lines,
// turns bullet glyphs into "- " markers, drops control characters and keeps
// at most one blank line between paragraphs.
func CleanText(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) || r == '\uFEFF' {
			return -1
		}
		return r
	}, content)

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}

	content = blankRuns.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(content)
}

func cleanLine(line string) string {
	line = strings.TrimSpace(innerSpace.ReplaceAllString(line, " "))
	if line == "" {
		return ""
	}
	if bulletGlyph.MatchString(line) {
		line = "- " + bulletGlyph.ReplaceAllString(line, "")
	}
	return line
}
