package rendering

import (
	"embed"
	"html/template"
	"strings"
	"sync"
)

//go:embed templates/*
var templateFiles embed.FS

var (
	documentOnce sync.Once
	documentTmpl *template.Template
	documentErr  error
)

// ResumeHTML renders blocks as an HTML fragment.
func ResumeHTML(blocks []Block) string {
	var sb strings.Builder
	for _, b := range blocks {
		switch b.Kind {
		case KindHeading:
			sb.WriteString("<h2>" + b.HTML + "</h2>\n")
		case KindList:
			sb.WriteString("<ul>\n")
			for _, item := range b.Items {
				sb.WriteString("<li>" + item.HTML + "</li>\n")
			}
			sb.WriteString("</ul>\n")
		case KindParagraph:
			sb.WriteString("<p>" + b.HTML + "</p>\n")
		case KindSpacer:
			sb.WriteString("<div class=\"spacer\"></div>\n")
		}
	}
	return sb.String()
}

// GapsHTML renders findings as an HTML list. No findings render as "".
func GapsHTML(findings []Finding) string {
	if len(findings) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("<ul class=\"gap-list\">\n")
	for _, f := range findings {
		sb.WriteString("<li>" + f.HTML + "</li>\n")
	}
	sb.WriteString("</ul>\n")
	return sb.String()
}

// Document renders a standalone printable page. The resume and gap
// fragments must come from ResumeHTML and GapsHTML, which escape their input.
func Document(title string, blocks []Block, findings []Finding) (string, error) {
	documentOnce.Do(func() {
		documentTmpl, documentErr = template.ParseFS(templateFiles, "templates/document.html.tmpl")
	})
	if documentErr != nil {
		return "", &TemplateError{Name: "document.html", Cause: documentErr}
	}

	data := struct {
		Title  string
		Resume template.HTML
		Gaps   template.HTML
	}{
		Title:  title,
		Resume: template.HTML(ResumeHTML(blocks)),
		Gaps:   template.HTML(GapsHTML(findings)),
	}

	var sb strings.Builder
	if err := documentTmpl.Execute(&sb, data); err != nil {
		return "", &TemplateError{Name: "document.html", Cause: err}
	}
	return sb.String(), nil
}
