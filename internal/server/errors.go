package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/generation"
	"github.com/jonathan/resume-tailor/internal/ingestion"
)

// ErrInvalidCredentials indicates a failed login.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrValidation indicates request validation failure.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the status code for err.
func HTTPStatus(err error) int {
	var (
		validation  *ErrValidation
		invalid     *generation.InvalidInputError
		unsupported *ingestion.UnsupportedFormatError
		upstream    *generation.UpstreamError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validation), errors.As(err, &invalid),
		errors.As(err, &unsupported), errors.Is(err, ingestion.ErrEmptyDocument):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, generation.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, generation.ErrNotFound), errors.Is(err, db.ErrNoRows):
		return http.StatusNotFound
	case errors.Is(err, db.ErrEmailTaken):
		return http.StatusConflict
	case errors.As(err, &upstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage hides internal error detail from 5xx responses.
func publicMessage(err error, status int) string {
	if status >= http.StatusInternalServerError {
		if status == http.StatusBadGateway {
			return "The generation service is unavailable. Please try again."
		}
		return http.StatusText(status)
	}
	return err.Error()
}
