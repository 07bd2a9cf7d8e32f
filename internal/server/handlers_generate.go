package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/generation"
	"github.com/jonathan/resume-tailor/internal/server/middleware"
)

// gapsSavedTrailer reports after the body whether the gap analysis was
// stored.
const gapsSavedTrailer = "X-Gaps-Saved"

// streamWriter forwards each increment to the client as soon as it arrives.
// Headers are sent with the first increment so that validation failures can
// still produce a normal error response.
type streamWriter struct {
	w       http.ResponseWriter
	rc      *http.ResponseController
	started bool
}

func newStreamWriter(w http.ResponseWriter) *streamWriter {
	return &streamWriter{w: w, rc: http.NewResponseController(w)}
}

func (sw *streamWriter) start() {
	if sw.started {
		return
	}
	sw.started = true

	h := sw.w.Header()
	h.Set("Content-Type", "text/plain; charset=utf-8")
	h.Set("Cache-Control", "no-cache")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Trailer", gapsSavedTrailer)
	sw.w.WriteHeader(http.StatusOK)
}

func (sw *streamWriter) Write(delta string) error {
	sw.start()
	if _, err := io.WriteString(sw.w, delta); err != nil {
		return err
	}
	if err := sw.rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return err
	}
	return nil
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var body GenerateRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.fail(w, r, err)
		return
	}

	// A malformed id cannot name a task, so it is reported as not found.
	taskID, err := uuid.Parse(strings.TrimSpace(body.TaskID))
	if err != nil {
		taskID = uuid.Nil
	}

	req := generation.Request{
		OwnerID:     middleware.UserID(r.Context()),
		TaskID:      taskID,
		ProfileText: body.ExistingProfile,
		JobText:     body.JobDescription,
	}

	sw := newStreamWriter(w)
	out, err := s.generator.Generate(r.Context(), req, sw)
	if err != nil {
		switch {
		case !sw.started && errors.Is(err, generation.ErrCancelled):
			// The client left while waiting; there is nobody to answer.
			return
		case !sw.started:
			s.fail(w, r, err)
			return
		}
		// Part of the body is already out. Abort the connection so the
		// client sees an incomplete response instead of a clean end.
		s.logger.Warn("aborting generation response",
			zap.String("task_id", taskID.String()),
			zap.Error(err))
		panic(http.ErrAbortHandler)
	}

	sw.start()
	w.Header().Set(gapsSavedTrailer, strconv.FormatBool(out.GapsSaved))
}
