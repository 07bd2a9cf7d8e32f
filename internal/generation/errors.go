package generation

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrUnauthorized indicates the request carries no authenticated owner.
var ErrUnauthorized = errors.New("unauthorized")

// ErrNotFound indicates the task does not exist for the requesting owner.
var ErrNotFound = errors.New("task not found")

// ErrCancelled indicates the caller went away before the stream ended.
var ErrCancelled = errors.New("generation cancelled")

// InvalidInputError indicates a request field failed validation.
type InvalidInputError struct {
	Field   string
	Message string
}

func (e *InvalidInputError) Error() string {
	return e.Message
}

// UpstreamError indicates the text-generation service failed.
type UpstreamError struct {
	Cause error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("generation service failed: %v", e.Cause)
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// PersistenceError indicates the gap analysis could not be stored after a
// successful stream.
type PersistenceError struct {
	TaskID uuid.UUID
	Cause  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to save gaps for task %s: %v", e.TaskID, e.Cause)
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}
