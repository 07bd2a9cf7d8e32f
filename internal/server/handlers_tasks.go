package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/generation"
	"github.com/jonathan/resume-tailor/internal/server/middleware"
)

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	name, company := strings.TrimSpace(req.Name), strings.TrimSpace(req.Company)
	if name == "" || company == "" {
		s.fail(w, r, &ErrValidation{Message: "Name and company are required."})
		return
	}

	task, err := s.store.CreateTask(r.Context(), db.TaskCreate{
		UserID:  middleware.UserID(r.Context()),
		Name:    name,
		Company: company,
		Notes:   trimmedOrNil(req.Notes),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, task)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.store.ListTasks(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if tasks == nil {
		tasks = []db.Task{}
	}
	s.respondJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.loadTask(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := taskIDParam(r)
	if !ok {
		s.fail(w, r, generation.ErrNotFound)
		return
	}

	var req UpdateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	s.updateInputs(w, r, taskID, db.TaskInputsUpdate{
		SetProfile:      req.ExistingProfile != nil,
		ExistingProfile: trimmedOrNil(req.ExistingProfile),
		SetJob:          req.JobDescription != nil,
		JobDescription:  trimmedOrNil(req.JobDescription),
	})
}

func (s *Server) updateInputs(w http.ResponseWriter, r *http.Request, taskID uuid.UUID, in db.TaskInputsUpdate) {
	task, err := s.store.UpdateTaskInputs(r.Context(), taskID, middleware.UserID(r.Context()), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if task == nil {
		s.fail(w, r, generation.ErrNotFound)
		return
	}
	s.respondJSON(w, http.StatusOK, task)
}

// loadTask returns the caller's task named by the {id} parameter, or
// generation.ErrNotFound.
func (s *Server) loadTask(r *http.Request) (*db.Task, error) {
	taskID, ok := taskIDParam(r)
	if !ok {
		return nil, generation.ErrNotFound
	}
	task, err := s.store.GetTask(r.Context(), taskID, middleware.UserID(r.Context()))
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, generation.ErrNotFound
	}
	return task, nil
}

// taskIDParam parses {id}. A malformed id cannot name an existing task.
func taskIDParam(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	return id, err == nil
}
