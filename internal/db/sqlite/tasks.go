package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-tailor/internal/db"
)

const taskColumns = `id, user_id, name, company, notes, existing_profile, job_description, gaps, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

// CreateTask inserts a task with no inputs or gaps.
func (s *Store) CreateTask(ctx context.Context, in db.TaskCreate) (*db.Task, error) {
	now := time.Now().UTC()
	t := &db.Task{
		ID:        uuid.New(),
		UserID:    in.UserID,
		Name:      in.Name,
		Company:   in.Company,
		Notes:     in.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, user_id, name, company, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID.String(), t.UserID.String(), t.Name, t.Company, t.Notes, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return t, nil
}

// ListTasks returns the user's tasks, newest first.
func (s *Store) ListTasks(ctx context.Context, userID uuid.UUID) ([]db.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`,
		userID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []db.Task{}
	for rows.Next() {
		var t db.Task
		if err := scanTask(rows, &t); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// GetTask returns the task, or nil when the user has no such task.
func (s *Store) GetTask(ctx context.Context, taskID, userID uuid.UUID) (*db.Task, error) {
	var t db.Task
	err := scanTask(s.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND user_id = ?`,
		taskID.String(), userID.String(),
	), &t)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTaskInputs writes the selected input fields and returns the task.
func (s *Store) UpdateTaskInputs(ctx context.Context, taskID, userID uuid.UUID, in db.TaskInputsUpdate) (*db.Task, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET
		   existing_profile = CASE WHEN ? THEN ? ELSE existing_profile END,
		   job_description  = CASE WHEN ? THEN ? ELSE job_description END,
		   updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		in.SetProfile, in.ExistingProfile, in.SetJob, in.JobDescription, time.Now().UTC(),
		taskID.String(), userID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return s.GetTask(ctx, taskID, userID)
}

// SetTaskGaps stores the gap analysis text for a task.
func (s *Store) SetTaskGaps(ctx context.Context, taskID, userID uuid.UUID, gaps string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET gaps = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		gaps, time.Now().UTC(), taskID.String(), userID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to save gaps: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return db.ErrNoRows
	}
	return nil
}

func scanTask(row scanner, t *db.Task) error {
	var id, userID string
	var notes, profile, job, gaps sql.NullString
	err := row.Scan(&id, &userID, &t.Name, &t.Company, &notes, &profile, &job, &gaps, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("failed to scan task: %w", err)
	}
	if t.ID, err = uuid.Parse(id); err != nil {
		return fmt.Errorf("corrupt task id %q: %w", id, err)
	}
	if t.UserID, err = uuid.Parse(userID); err != nil {
		return fmt.Errorf("corrupt user id %q: %w", userID, err)
	}
	t.Notes = nullable(notes)
	t.ExistingProfile = nullable(profile)
	t.JobDescription = nullable(job)
	t.Gaps = nullable(gaps)
	return nil
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
