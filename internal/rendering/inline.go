// Package rendering turns the model's plain-text sections into structured
// blocks and markup.
package rendering

import (
	"regexp"
	"strings"
)

var (
	htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

	latexEscaper = strings.NewReplacer(
		`\`, `\textbackslash{}`,
		`{`, `\{`,
		`}`, `\}`,
		`$`, `\$`,
		`&`, `\&`,
		`%`, `\%`,
		`#`, `\#`,
		`^`, `\textasciicircum{}`,
		`_`, `\_`,
		`~`, `\textasciitilde{}`,
	)

	boldPattern = regexp.MustCompile(`\*\*(.+?)\*\*`)
)

// EscapeHTML escapes &, < and >.
func EscapeHTML(text string) string {
	return htmlEscaper.Replace(text)
}

// InlineHTML escapes text and then turns **bold** spans into <strong>.
func InlineHTML(text string) string {
	return boldPattern.ReplaceAllString(EscapeHTML(text), "<strong>$1</strong>")
}

// EscapeLaTeX escapes the LaTeX special characters \ { } $ & % # ^ _ ~
func EscapeLaTeX(text string) string {
	return latexEscaper.Replace(text)
}

// InlineLaTeX escapes text and then turns **bold** spans into \textbf.
func InlineLaTeX(text string) string {
	return boldPattern.ReplaceAllString(EscapeLaTeX(text), `\textbf{$1}`)
}

// stripBold removes every ** marker.
func stripBold(text string) string {
	return strings.ReplaceAll(text, "**", "")
}
