package db

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User is an account that owns tasks.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize to JSON
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Task is one tailoring job: a profile, a job description and the most
// recent gap analysis.
type Task struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	Name            string    `json:"name"`
	Company         string    `json:"company"`
	Notes           *string   `json:"notes"`
	ExistingProfile *string   `json:"existing_profile"`
	JobDescription  *string   `json:"job_description"`
	Gaps            *string   `json:"gaps"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TaskCreate holds the fields for a new task.
type TaskCreate struct {
	UserID  uuid.UUID
	Name    string
	Company string
	Notes   *string
}

// TaskInputsUpdate changes a task's inputs. A field is written only when its
// Set flag is true; a nil value stores NULL.
type TaskInputsUpdate struct {
	SetProfile      bool
	ExistingProfile *string
	SetJob          bool
	JobDescription  *string
}

// TaskStore persists tasks. Every operation is scoped to the owning user: a
// task that exists but belongs to someone else behaves as missing.
type TaskStore interface {
	CreateTask(ctx context.Context, in TaskCreate) (*Task, error)
	// ListTasks returns the user's tasks, newest first.
	ListTasks(ctx context.Context, userID uuid.UUID) ([]Task, error)
	// GetTask returns nil, nil when no task matches.
	GetTask(ctx context.Context, taskID, userID uuid.UUID) (*Task, error)
	// UpdateTaskInputs returns nil, nil when no task matches.
	UpdateTaskInputs(ctx context.Context, taskID, userID uuid.UUID, in TaskInputsUpdate) (*Task, error)
	// SetTaskGaps returns ErrNoRows when no task matches.
	SetTaskGaps(ctx context.Context, taskID, userID uuid.UUID, gaps string) error
}

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (*User, error)
	// GetUser returns nil, nil when the user does not exist.
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	// GetUserByEmail returns nil, nil when the user does not exist.
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	CheckEmailExists(ctx context.Context, email string) (bool, error)
}

// Store is the full persistence surface used by the server.
type Store interface {
	TaskStore
	UserStore
	Migrate(ctx context.Context) error
	Close() error
}
