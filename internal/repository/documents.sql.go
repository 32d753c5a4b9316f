package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

const documentColumns = `id, account_id, title, content, category, tags, created_at, updated_at`

func scanDocument(row rowScanner) (Document, error) {
	var i Document
	err := row.Scan(
		&i.ID,
		&i.AccountID,
		&i.Title,
		&i.Content,
		&i.Category,
		&i.Tags,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listDocuments = `-- name: ListDocuments :many
SELECT ` + documentColumns + `
FROM documents
WHERE account_id = $1
ORDER BY updated_at DESC
`

func (q *Queries) ListDocuments(ctx context.Context, accountID string) ([]Document, error) {
	rows, err := q.db.QueryContext(ctx, listDocuments, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Document
	for rows.Next() {
		i, err := scanDocument(rows)
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

const getDocument = `-- name: GetDocument :one
SELECT ` + documentColumns + `
FROM documents
WHERE id = $1 AND account_id = $2
`

type GetDocumentParams struct {
	ID        uuid.UUID
	AccountID string
}

func (q *Queries) GetDocument(ctx context.Context, arg GetDocumentParams) (Document, error) {
	row := q.db.QueryRowContext(ctx, getDocument, arg.ID, arg.AccountID)
	return scanDocument(row)
}

const countDocuments = `-- name: CountDocuments :one
SELECT COUNT(*) FROM documents
WHERE account_id = $1
`

func (q *Queries) CountDocuments(ctx context.Context, accountID string) (int64, error) {
	row := q.db.QueryRowContext(ctx, countDocuments, accountID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createDocument = `-- name: CreateDocument :one
INSERT INTO documents (account_id, title, content, category, tags)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + documentColumns + `
`

type CreateDocumentParams struct {
	AccountID string
	Title     string
	Content   sql.NullString
	Category  sql.NullString
	Tags      pqtype.NullRawMessage
}

func (q *Queries) CreateDocument(ctx context.Context, arg CreateDocumentParams) (Document, error) {
	row := q.db.QueryRowContext(ctx, createDocument,
		arg.AccountID,
		arg.Title,
		arg.Content,
		arg.Category,
		arg.Tags,
	)
	return scanDocument(row)
}

const updateDocument = `-- name: UpdateDocument :one
UPDATE documents SET
    title = $3,
    content = $4,
    category = $5,
    tags = $6,
    updated_at = NOW()
WHERE id = $1 AND account_id = $2
RETURNING ` + documentColumns + `
`

type UpdateDocumentParams struct {
	ID        uuid.UUID
	AccountID string
	Title     string
	Content   sql.NullString
	Category  sql.NullString
	Tags      pqtype.NullRawMessage
}

func (q *Queries) UpdateDocument(ctx context.Context, arg UpdateDocumentParams) (Document, error) {
	row := q.db.QueryRowContext(ctx, updateDocument,
		arg.ID,
		arg.AccountID,
		arg.Title,
		arg.Content,
		arg.Category,
		arg.Tags,
	)
	return scanDocument(row)
}

const deleteDocument = `-- name: DeleteDocument :execrows
DELETE FROM documents
WHERE id = $1 AND account_id = $2
`

type DeleteDocumentParams struct {
	ID        uuid.UUID
	AccountID string
}

func (q *Queries) DeleteDocument(ctx context.Context, arg DeleteDocumentParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteDocument, arg.ID, arg.AccountID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
