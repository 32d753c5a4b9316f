package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

const goalColumns = `id, account_id, title, description, target_date, status, progress,
    action_plan, created_at, updated_at`

func scanGoal(row rowScanner) (Goal, error) {
	var i Goal
	err := row.Scan(
		&i.ID,
		&i.AccountID,
		&i.Title,
		&i.Description,
		&i.TargetDate,
		&i.Status,
		&i.Progress,
		&i.ActionPlan,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listGoals = `-- name: ListGoals :many
SELECT ` + goalColumns + `
FROM goals
WHERE account_id = $1
ORDER BY created_at DESC
`

func (q *Queries) ListGoals(ctx context.Context, accountID string) ([]Goal, error) {
	rows, err := q.db.QueryContext(ctx, listGoals, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Goal
	for rows.Next() {
		i, err := scanGoal(rows)
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

const getGoal = `-- name: GetGoal :one
SELECT ` + goalColumns + `
FROM goals
WHERE id = $1 AND account_id = $2
`

type GetGoalParams struct {
	ID        uuid.UUID
	AccountID string
}

func (q *Queries) GetGoal(ctx context.Context, arg GetGoalParams) (Goal, error) {
	row := q.db.QueryRowContext(ctx, getGoal, arg.ID, arg.AccountID)
	return scanGoal(row)
}

const countActiveGoals = `-- name: CountActiveGoals :one
SELECT COUNT(*) FROM goals
WHERE account_id = $1 AND status = 'active'
`

func (q *Queries) CountActiveGoals(ctx context.Context, accountID string) (int64, error) {
	row := q.db.QueryRowContext(ctx, countActiveGoals, accountID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createGoal = `-- name: CreateGoal :one
INSERT INTO goals (account_id, title, description, target_date)
VALUES ($1, $2, $3, $4)
RETURNING ` + goalColumns + `
`

type CreateGoalParams struct {
	AccountID   string
	Title       string
	Description sql.NullString
	TargetDate  sql.NullTime
}

func (q *Queries) CreateGoal(ctx context.Context, arg CreateGoalParams) (Goal, error) {
	row := q.db.QueryRowContext(ctx, createGoal,
		arg.AccountID,
		arg.Title,
		arg.Description,
		arg.TargetDate,
	)
	return scanGoal(row)
}

const updateGoal = `-- name: UpdateGoal :one
UPDATE goals SET
    title = $3,
    description = $4,
    target_date = $5,
    status = $6,
    progress = $7,
    updated_at = NOW()
WHERE id = $1 AND account_id = $2
RETURNING ` + goalColumns + `
`

type UpdateGoalParams struct {
	ID          uuid.UUID
	AccountID   string
	Title       string
	Description sql.NullString
	TargetDate  sql.NullTime
	Status      string
	Progress    int32
}

func (q *Queries) UpdateGoal(ctx context.Context, arg UpdateGoalParams) (Goal, error) {
	row := q.db.QueryRowContext(ctx, updateGoal,
		arg.ID,
		arg.AccountID,
		arg.Title,
		arg.Description,
		arg.TargetDate,
		arg.Status,
		arg.Progress,
	)
	return scanGoal(row)
}

const updateGoalActionPlan = `-- name: UpdateGoalActionPlan :one
UPDATE goals SET
    action_plan = $3,
    updated_at = NOW()
WHERE id = $1 AND account_id = $2
RETURNING ` + goalColumns + `
`

type UpdateGoalActionPlanParams struct {
	ID         uuid.UUID
	AccountID  string
	ActionPlan pqtype.NullRawMessage
}

func (q *Queries) UpdateGoalActionPlan(ctx context.Context, arg UpdateGoalActionPlanParams) (Goal, error) {
	row := q.db.QueryRowContext(ctx, updateGoalActionPlan, arg.ID, arg.AccountID, arg.ActionPlan)
	return scanGoal(row)
}

const deleteGoal = `-- name: DeleteGoal :execrows
DELETE FROM goals
WHERE id = $1 AND account_id = $2
`

type DeleteGoalParams struct {
	ID        uuid.UUID
	AccountID string
}

func (q *Queries) DeleteGoal(ctx context.Context, arg DeleteGoalParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteGoal, arg.ID, arg.AccountID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
