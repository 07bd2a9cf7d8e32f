package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jonathan/resume-tailor/internal/export"
	"github.com/jonathan/resume-tailor/internal/rendering"
	"github.com/jonathan/resume-tailor/internal/sections"
)

// outputPaths are the optional files written from a parsed response.
type outputPaths struct {
	pdf  string
	html string
	tex  string
}

func (p *outputPaths) empty() bool {
	return p.pdf == "" && p.html == "" && p.tex == ""
}

// printGaps writes the gap findings as a plain list.
func printGaps(w io.Writer, result sections.Result) {
	findings := rendering.RenderGaps(result.Gaps)
	if len(findings) == 0 {
		fmt.Fprintln(w, "No gap analysis in the response.")
		return
	}
	fmt.Fprintln(w, "Gap analysis:")
	for _, f := range findings {
		fmt.Fprintf(w, "  - %s\n", f.Text)
	}
}

// writeOutputs renders the resume section to every requested file.
func writeOutputs(w io.Writer, result sections.Result, paths outputPaths, page export.PageConfig) error {
	blocks := rendering.RenderResume(result.Resume)

	if paths.pdf != "" {
		layout, err := export.SaveFile(paths.pdf, result.Resume, page)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Wrote %s (%d pages)\n", paths.pdf, layout.PageCount())
	}

	if paths.html != "" {
		html, err := rendering.Document("Tailored Resume", blocks, rendering.RenderGaps(result.Gaps))
		if err != nil {
			return err
		}
		if err := os.WriteFile(paths.html, []byte(html), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", paths.html, err)
		}
		fmt.Fprintf(w, "Wrote %s\n", paths.html)
	}

	if paths.tex != "" {
		tex, err := rendering.RenderLaTeX(blocks)
		if err != nil {
			return err
		}
		if err := os.WriteFile(paths.tex, []byte(tex), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", paths.tex, err)
		}
		fmt.Fprintf(w, "Wrote %s\n", paths.tex)
	}
	return nil
}
