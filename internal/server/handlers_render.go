package server

import (
	"bytes"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/export"
	"github.com/jonathan/resume-tailor/internal/rendering"
	"github.com/jonathan/resume-tailor/internal/sections"
)

const documentTitle = "Tailored Resume"

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	parsed := sections.Parse(req.Text)
	blocks := rendering.RenderResume(parsed.Resume)
	findings := rendering.RenderGaps(parsed.Gaps)

	s.respondJSON(w, http.StatusOK, RenderResponse{
		Resume:      blocks,
		ResumeHTML:  rendering.ResumeHTML(blocks),
		Gaps:        findings,
		GapsHTML:    rendering.GapsHTML(findings),
		ResumeFound: parsed.ResumeFound,
		GapsFound:   parsed.GapsFound,
	})
}

// exportText decodes an export request and returns the resume text in it.
// Text without resume tags is exported whole.
func (s *Server) exportText(w http.ResponseWriter, r *http.Request) (ExportRequest, string, bool) {
	var req ExportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return req, "", false
	}
	return req, sections.Parse(req.Text).Resume, true
}

func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	req, text, ok := s.exportText(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	layout, err := export.WritePDF(&buf, text, s.pageConfig)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.Debug("exported pdf", zap.Int("pages", layout.PageCount()), zap.Int("bytes", buf.Len()))

	s.attachment(w, "application/pdf", export.SafeFilename(req.Filename, ".pdf", export.DefaultFilename), buf.Bytes())
}

func (s *Server) handleExportHTMLPDF(w http.ResponseWriter, r *http.Request) {
	req, text, ok := s.exportText(w, r)
	if !ok {
		return
	}
	if s.printer == nil {
		s.respondError(w, http.StatusServiceUnavailable, "HTML printing is not configured")
		return
	}

	html, err := rendering.Document(documentTitle, rendering.RenderResume(text), nil)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	pdf, err := s.printer.RenderHTML(r.Context(), html)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.attachment(w, "application/pdf", export.SafeFilename(req.Filename, ".pdf", export.DefaultFilename), pdf)
}

func (s *Server) handleExportTeX(w http.ResponseWriter, r *http.Request) {
	req, text, ok := s.exportText(w, r)
	if !ok {
		return
	}

	tex, err := rendering.RenderLaTeX(rendering.RenderResume(text))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.attachment(w, "application/x-tex; charset=utf-8", export.SafeFilename(req.Filename, ".tex", "tailored-resume.tex"), []byte(tex))
}

func (s *Server) attachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	h := w.Header()
	h.Set("Content-Type", contentType)
	h.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	h.Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		s.logger.Warn("failed to write attachment", zap.Error(err))
	}
}
