package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const taskColumns = `id, user_id, name, company, notes, existing_profile, job_description, gaps, created_at, updated_at`

// CreateTask inserts a task with no profile, job description or gaps.
func (db *DB) CreateTask(ctx context.Context, in TaskCreate) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:        uuid.New(),
		UserID:    in.UserID,
		Name:      in.Name,
		Company:   in.Company,
		Notes:     in.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO tasks (id, user_id, name, company, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		task.ID, task.UserID, task.Name, task.Company, task.Notes, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

// ListTasks returns the user's tasks, newest first.
func (db *DB) ListTasks(ctx context.Context, userID uuid.UUID) ([]Task, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 ORDER BY created_at DESC, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []Task{}
	for rows.Next() {
		var t Task
		if err := scanTask(rows, &t); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// GetTask retrieves a task owned by userID.
func (db *DB) GetTask(ctx context.Context, taskID, userID uuid.UUID) (*Task, error) {
	var t Task
	err := scanTask(db.pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND user_id = $2`,
		taskID, userID,
	), &t)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &t, nil
}

// UpdateTaskInputs writes the selected input fields and returns the task.
func (db *DB) UpdateTaskInputs(ctx context.Context, taskID, userID uuid.UUID, in TaskInputsUpdate) (*Task, error) {
	var t Task
	err := scanTask(db.pool.QueryRow(ctx,
		`UPDATE tasks SET
		   existing_profile = CASE WHEN $3 THEN $4 ELSE existing_profile END,
		   job_description  = CASE WHEN $5 THEN $6 ELSE job_description END,
		   updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+taskColumns,
		taskID, userID, in.SetProfile, in.ExistingProfile, in.SetJob, in.JobDescription,
	), &t)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return &t, nil
}

// SetTaskGaps stores the gap analysis text for a task.
func (db *DB) SetTaskGaps(ctx context.Context, taskID, userID uuid.UUID, gaps string) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE tasks SET gaps = $3, updated_at = NOW() WHERE id = $1 AND user_id = $2`,
		taskID, userID, gaps,
	)
	if err != nil {
		return fmt.Errorf("failed to save gaps: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRows
	}
	return nil
}

func scanTask(row pgx.Row, t *Task) error {
	return row.Scan(&t.ID, &t.UserID, &t.Name, &t.Company, &t.Notes,
		&t.ExistingProfile, &t.JobDescription, &t.Gaps, &t.CreatedAt, &t.UpdatedAt)
}
