package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const transactionColumns = `id, account_id, amount::text, type, category, description, date,
    is_recurring, created_at`

func scanTransaction(row rowScanner) (Transaction, error) {
	var i Transaction
	err := row.Scan(
		&i.ID,
		&i.AccountID,
		&i.Amount,
		&i.Type,
		&i.Category,
		&i.Description,
		&i.Date,
		&i.IsRecurring,
		&i.CreatedAt,
	)
	return i, err
}

const listTransactions = `-- name: ListTransactions :many
SELECT ` + transactionColumns + `
FROM transactions
WHERE account_id = $1
ORDER BY date DESC, created_at DESC
LIMIT $2
`

type ListTransactionsParams struct {
	AccountID string
	Limit     int32
}

func (q *Queries) ListTransactions(ctx context.Context, arg ListTransactionsParams) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions, arg.AccountID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		i, err := scanTransaction(rows)
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

const createTransaction = `-- name: CreateTransaction :one
INSERT INTO transactions (account_id, amount, type, category, description, date, is_recurring)
VALUES ($1, $2::numeric, $3, $4, $5, $6, $7)
RETURNING ` + transactionColumns + `
`

type CreateTransactionParams struct {
	AccountID   string
	Amount      string
	Type        string
	Category    string
	Description sql.NullString
	Date        time.Time
	IsRecurring bool
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, createTransaction,
		arg.AccountID,
		arg.Amount,
		arg.Type,
		arg.Category,
		arg.Description,
		arg.Date,
		arg.IsRecurring,
	)
	return scanTransaction(row)
}

const deleteTransaction = `-- name: DeleteTransaction :execrows
DELETE FROM transactions
WHERE id = $1 AND account_id = $2
`

type DeleteTransactionParams struct {
	ID        uuid.UUID
	AccountID string
}

func (q *Queries) DeleteTransaction(ctx context.Context, arg DeleteTransactionParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTransaction, arg.ID, arg.AccountID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
