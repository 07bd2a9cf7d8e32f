package export

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-pdf/fpdf"
)

// DefaultFilename is used when the caller supplies none.
const DefaultFilename = "tailored-resume.pdf"

// WritePDF lays text out on fixed-size pages in a monospaced font and writes
// the document to w. Long lines are word-wrapped to the usable width and a
// new page starts whenever the next line would cross the bottom margin.
func WritePDF(w io.Writer, text string, cfg PageConfig) (*Layout, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, &ExportError{Op: "pdf", Cause: err}
	}

	pdf := fpdf.New(cfg.Orientation, "pt", cfg.Size, "")
	pdf.SetMargins(cfg.Margin, cfg.Margin, cfg.Margin)
	pdf.SetAutoPageBreak(false, cfg.Margin)
	pdf.SetCreator("resume-tailor", true)
	pdf.SetFont(cfg.FontFamily, "", cfg.FontSize)
	if err := pdf.Error(); err != nil {
		return nil, &ExportError{Op: "pdf", Cause: err}
	}

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	measure := func(s string) float64 { return pdf.GetStringWidth(tr(s)) }

	pageW, pageH := pdf.GetPageSize()
	usableW := pageW - 2*cfg.Margin
	usableH := pageH - 2*cfg.Margin
	if usableW <= 0 || usableH < cfg.LineHeight {
		return nil, &ExportError{Op: "pdf", Cause: fmt.Errorf("margins leave no room on a %s page", cfg.Size)}
	}
	linesPerPage := int(math.Floor(usableH / cfg.LineHeight))

	layout := paginate(text, usableW, linesPerPage, measure)
	for _, page := range layout.Pages {
		pdf.AddPage()
		y := cfg.Margin
		for _, line := range page {
			pdf.Text(cfg.Margin, y+cfg.FontSize, tr(line))
			y += cfg.LineHeight
		}
	}

	if err := pdf.Output(w); err != nil {
		return nil, &ExportError{Op: "pdf", Cause: err}
	}
	return layout, nil
}

// SaveFile writes the PDF for text to path.
func SaveFile(path, text string, cfg PageConfig) (*Layout, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, &ExportError{Op: "save", Cause: err}
	}
	layout, err := WritePDF(f, text, cfg)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = &ExportError{Op: "save", Cause: cerr}
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, err
	}
	return layout, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SafeFilename reduces name to a plain file name ending in ext, falling back
// to fallback when nothing usable is left.
func SafeFilename(name, ext, fallback string) string {
	name = filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	name = strings.TrimSuffix(name, ext)
	name = strings.Trim(unsafeFilenameChars.ReplaceAllString(name, "-"), "-.")
	if name == "" {
		return fallback
	}
	return name + ext
}
