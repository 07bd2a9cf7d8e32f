package rendering

import (
	"strings"
	"text/template"
)

// RenderLaTeX renders blocks as a standalone LaTeX article.
func RenderLaTeX(blocks []Block) (string, error) {
	tmpl, err := template.New("resume.tex.tmpl").Funcs(template.FuncMap{
		"escape": EscapeLaTeX,
		"inline": InlineLaTeX,
	}).ParseFS(templateFiles, "templates/resume.tex.tmpl")
	if err != nil {
		return "", &TemplateError{Name: "resume.tex", Cause: err}
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, blocks); err != nil {
		return "", &TemplateError{Name: "resume.tex", Cause: err}
	}
	return sb.String(), nil
}
