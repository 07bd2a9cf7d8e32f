package export

import (
	"strings"
	"unicode/utf8"
)

// Layout records where WritePDF placed each wrapped line.
type Layout struct {
	Pages        [][]string
	UsableWidth  float64
	MaxLineWidth float64
}

// PageCount returns the number of pages.
func (l *Layout) PageCount() int {
	return len(l.Pages)
}

// paginate wraps every raw line of text to width and splits the result into
// pages of linesPerPage lines. Blank lines are kept as a single space.
func paginate(text string, width float64, linesPerPage int, measure func(string) float64) *Layout {
	if linesPerPage < 1 {
		linesPerPage = 1
	}
	layout := &Layout{UsableWidth: width, Pages: [][]string{{}}}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\t", "    ")

	for _, raw := range strings.Split(text, "\n") {
		for _, line := range wrap(raw, width, measure) {
			page := &layout.Pages[len(layout.Pages)-1]
			if len(*page) >= linesPerPage {
				layout.Pages = append(layout.Pages, []string{})
				page = &layout.Pages[len(layout.Pages)-1]
			}
			*page = append(*page, line)
			if w := measure(line); w > layout.MaxLineWidth {
				layout.MaxLineWidth = w
			}
		}
	}
	return layout
}

// wrap breaks line at spaces so no piece is wider than width. A word wider
// than width is split between characters.
func wrap(line string, width float64, measure func(string) float64) []string {
	words := strings.Fields(line)
	if len(words) == 0 {
		return []string{" "}
	}

	var out []string
	current := ""
	for _, word := range words {
		if measure(word) > width {
			if current != "" {
				out = append(out, current)
			}
			pieces := splitWord(word, width, measure)
			out = append(out, pieces[:len(pieces)-1]...)
			current = pieces[len(pieces)-1]
			continue
		}

		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if measure(candidate) <= width {
			current = candidate
			continue
		}
		out = append(out, current)
		current = word
	}
	if current != "" {
		out = append(out, current)
	}
	return out
}

// splitWord cuts word into pieces that each fit width. Every piece holds at
// least one character, so a single glyph wider than width still progresses.
func splitWord(word string, width float64, measure func(string) float64) []string {
	var pieces []string
	start := 0
	for start < len(word) {
		end := start
		for end < len(word) {
			_, size := utf8.DecodeRuneInString(word[end:])
			if end > start && measure(word[start:end+size]) > width {
				break
			}
			end += size
		}
		pieces = append(pieces, word[start:end])
		start = end
	}
	return pieces
}
