package server

import (
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/ingestion"
)

// multipartOverhead leaves room for form boundaries around the file.
const multipartOverhead = 1 << 20

func (s *Server) handleImportProfile(w http.ResponseWriter, r *http.Request) {
	task, err := s.loadTask(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, ingestion.MaxProfileBytes+multipartOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(w, r, &ErrValidation{Field: "file", Message: "file too large"})
			return
		}
		s.fail(w, r, &ErrValidation{Field: "file", Message: "a file upload is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, ingestion.MaxProfileBytes+1))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	text, err := ingestion.ExtractProfileText(header.Filename, data)
	if err != nil {
		var unsupported *ingestion.UnsupportedFormatError
		if !errors.As(err, &unsupported) && !errors.Is(err, ingestion.ErrEmptyDocument) {
			// Corrupt or oversized documents are the uploader's problem.
			err = &ErrValidation{Field: "file", Message: err.Error()}
		}
		s.fail(w, r, err)
		return
	}

	s.logger.Info("profile imported",
		zap.String("task_id", task.ID.String()),
		zap.String("filename", header.Filename),
		zap.Int("chars", len(text)))
	s.updateInputs(w, r, task.ID, db.TaskInputsUpdate{SetProfile: true, ExistingProfile: &text})
}

func (s *Server) handleImportJob(w http.ResponseWriter, r *http.Request) {
	task, err := s.loadTask(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var req ImportJobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if s.jobs == nil {
		s.respondError(w, http.StatusServiceUnavailable, "job import is not configured")
		return
	}

	text, err := s.jobs.FetchJobText(r.Context(), req.URL)
	if err != nil {
		if errors.Is(err, ingestion.ErrEmptyDocument) {
			s.fail(w, r, err)
			return
		}
		s.logger.Warn("job import failed", zap.String("url", req.URL), zap.Error(err))
		s.respondError(w, http.StatusBadGateway, "Could not fetch the job posting.")
		return
	}

	s.updateInputs(w, r, task.ID, db.TaskInputsUpdate{SetJob: true, JobDescription: &text})
}
