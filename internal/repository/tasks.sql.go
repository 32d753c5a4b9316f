package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

const taskColumns = `id, account_id, title, description, priority, status, due_date, category,
    is_ai_generated, completed_at, created_at, updated_at`

func scanTask(row rowScanner) (Task, error) {
	var i Task
	err := row.Scan(
		&i.ID,
		&i.AccountID,
		&i.Title,
		&i.Description,
		&i.Priority,
		&i.Status,
		&i.DueDate,
		&i.Category,
		&i.IsAiGenerated,
		&i.CompletedAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listTasks = `-- name: ListTasks :many
SELECT ` + taskColumns + `
FROM tasks
WHERE account_id = $1
ORDER BY created_at DESC
`

func (q *Queries) ListTasks(ctx context.Context, accountID string) ([]Task, error) {
	rows, err := q.db.QueryContext(ctx, listTasks, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Task
	for rows.Next() {
		i, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getTask = `-- name: GetTask :one
SELECT ` + taskColumns + `
FROM tasks
WHERE id = $1 AND account_id = $2
`

type GetTaskParams struct {
	ID        uuid.UUID
	AccountID string
}

func (q *Queries) GetTask(ctx context.Context, arg GetTaskParams) (Task, error) {
	row := q.db.QueryRowContext(ctx, getTask, arg.ID, arg.AccountID)
	return scanTask(row)
}

const createTask = `-- name: CreateTask :one
INSERT INTO tasks (account_id, title, description, priority, due_date, category, is_ai_generated)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + taskColumns + `
`

type CreateTaskParams struct {
	AccountID     string
	Title         string
	Description   sql.NullString
	Priority      string
	DueDate       sql.NullTime
	Category      sql.NullString
	IsAiGenerated bool
}

func (q *Queries) CreateTask(ctx context.Context, arg CreateTaskParams) (Task, error) {
	row := q.db.QueryRowContext(ctx, createTask,
		arg.AccountID,
		arg.Title,
		arg.Description,
		arg.Priority,
		arg.DueDate,
		arg.Category,
		arg.IsAiGenerated,
	)
	return scanTask(row)
}

const updateTask = `-- name: UpdateTask :one
UPDATE tasks SET
    title = $3,
    description = $4,
    priority = $5,
    status = $6,
    due_date = $7,
    category = $8,
    completed_at = $9,
    updated_at = NOW()
WHERE id = $1 AND account_id = $2
RETURNING ` + taskColumns + `
`

type UpdateTaskParams struct {
	ID          uuid.UUID
	AccountID   string
	Title       string
	Description sql.NullString
	Priority    string
	Status      string
	DueDate     sql.NullTime
	Category    sql.NullString
	CompletedAt sql.NullTime
}

func (q *Queries) UpdateTask(ctx context.Context, arg UpdateTaskParams) (Task, error) {
	row := q.db.QueryRowContext(ctx, updateTask,
		arg.ID,
		arg.AccountID,
		arg.Title,
		arg.Description,
		arg.Priority,
		arg.Status,
		arg.DueDate,
		arg.Category,
		arg.CompletedAt,
	)
	return scanTask(row)
}

const deleteTask = `-- name: DeleteTask :execrows
DELETE FROM tasks
WHERE id = $1 AND account_id = $2
`

type DeleteTaskParams struct {
	ID        uuid.UUID
	AccountID string
}

func (q *Queries) DeleteTask(ctx context.Context, arg DeleteTaskParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTask, arg.ID, arg.AccountID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
