package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/rendering"
)

// MaxFieldLength bounds free-text request fields, in characters.
const MaxFieldLength = 200000

// maxJSONBody bounds JSON request bodies. Field limits count characters,
// so this leaves room for multi-byte text and escapes.
const maxJSONBody = 8 << 20

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email,max=320"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User  *db.User `json:"user"`
	Token string   `json:"token"`
}

// CreateTaskRequest is the body of POST /tasks.
type CreateTaskRequest struct {
	Name    string  `json:"name" validate:"max=200"`
	Company string  `json:"company" validate:"max=200"`
	Notes   *string `json:"notes" validate:"omitempty,max=10000"`
}

// UpdateTaskRequest is the body of PUT /tasks/{id}. Omitted fields are left
// unchanged; blank fields are cleared.
type UpdateTaskRequest struct {
	ExistingProfile *string `json:"existing_profile" validate:"omitempty,max=200000"`
	JobDescription  *string `json:"job_description" validate:"omitempty,max=200000"`
}

// GenerateRequest is the body of POST /generate.
type GenerateRequest struct {
	TaskID          string `json:"taskId"`
	ExistingProfile string `json:"existing_profile" validate:"max=200000"`
	JobDescription  string `json:"job_description" validate:"max=200000"`
}

// RenderRequest is the body of POST /render.
type RenderRequest struct {
	Text string `json:"text" validate:"max=400000"`
}

// ExportRequest is the body of the export endpoints.
type ExportRequest struct {
	Text     string `json:"text" validate:"required,max=400000"`
	Filename string `json:"filename" validate:"max=255"`
}

// ImportJobRequest is the body of POST /tasks/{id}/job/import.
type ImportJobRequest struct {
	URL string `json:"url" validate:"required,url,max=2048"`
}

// RenderResponse is returned by POST /render.
type RenderResponse struct {
	Resume      []rendering.Block   `json:"resume"`
	ResumeHTML  string              `json:"resume_html"`
	Gaps        []rendering.Finding `json:"gaps"`
	GapsHTML    string              `json:"gaps_html"`
	ResumeFound bool                `json:"resume_found"`
	GapsFound   bool                `json:"gaps_found"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeJSON reads a JSON body into dst and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &ErrValidation{Message: "Request body too large"}
		}
		return &ErrValidation{Message: "Invalid request body"}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return &ErrValidation{Message: "Invalid request body"}
	}

	if err := validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		ve := verrs[0]
		return &ErrValidation{Field: jsonFieldName(ve), Message: ve.Tag()}
	}
	return &ErrValidation{Message: "validation error: invalid request"}
}

func jsonFieldName(fe validator.FieldError) string {
	name := fe.Field()
	switch name {
	case "TaskID":
		return "taskId"
	case "ExistingProfile":
		return "existing_profile"
	case "JobDescription":
		return "job_description"
	}
	return strings.ToLower(name)
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
