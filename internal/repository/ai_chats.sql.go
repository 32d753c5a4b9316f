package repository

import (
	"context"
	"database/sql"
)

const aiChatColumns = `id, account_id, message, response, context, created_at`

func scanAiChat(row rowScanner) (AiChat, error) {
	var i AiChat
	err := row.Scan(
		&i.ID,
		&i.AccountID,
		&i.Message,
		&i.Response,
		&i.Context,
		&i.CreatedAt,
	)
	return i, err
}

const createAIChat = `-- name: CreateAIChat :one
INSERT INTO ai_chats (account_id, message, response, context)
VALUES ($1, $2, $3, $4)
RETURNING ` + aiChatColumns + `
`

type CreateAIChatParams struct {
	AccountID string
	Message   string
	Response  string
	Context   sql.NullString
}

func (q *Queries) CreateAIChat(ctx context.Context, arg CreateAIChatParams) (AiChat, error) {
	row := q.db.QueryRowContext(ctx, createAIChat, arg.AccountID, arg.Message, arg.Response, arg.Context)
	return scanAiChat(row)
}

const listAIChats = `-- name: ListAIChats :many
SELECT ` + aiChatColumns + `
FROM ai_chats
WHERE account_id = $1
ORDER BY created_at DESC
LIMIT $2
`

type ListAIChatsParams struct {
	AccountID string
	Limit     int32
}

func (q *Queries) ListAIChats(ctx context.Context, arg ListAIChatsParams) ([]AiChat, error) {
	rows, err := q.db.QueryContext(ctx, listAIChats, arg.AccountID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AiChat
	for rows.Next() {
		i, err := scanAiChat(rows)
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
