package repository

import (
	"context"
	"database/sql"

	"github.com/sqlc-dev/pqtype"
)

const wellnessColumns = `id, account_id, mood, energy_level, sleep_hours::float8, notes, habits,
    entry_date, created_at`

func scanWellnessEntry(row rowScanner) (WellnessEntry, error) {
	var i WellnessEntry
	err := row.Scan(
		&i.ID,
		&i.AccountID,
		&i.Mood,
		&i.EnergyLevel,
		&i.SleepHours,
		&i.Notes,
		&i.Habits,
		&i.EntryDate,
		&i.CreatedAt,
	)
	return i, err
}

const listWellnessEntries = `-- name: ListWellnessEntries :many
SELECT ` + wellnessColumns + `
FROM wellness_entries
WHERE account_id = $1
ORDER BY entry_date DESC, created_at DESC
LIMIT $2
`

type ListWellnessEntriesParams struct {
	AccountID string
	Limit     int32
}

func (q *Queries) ListWellnessEntries(ctx context.Context, arg ListWellnessEntriesParams) ([]WellnessEntry, error) {
	rows, err := q.db.QueryContext(ctx, listWellnessEntries, arg.AccountID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []WellnessEntry
	for rows.Next() {
		i, err := scanWellnessEntry(rows)
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

const getWellnessEntryByDate = `-- name: GetWellnessEntryByDate :one
SELECT ` + wellnessColumns + `
FROM wellness_entries
WHERE account_id = $1 AND entry_date = $2::date
ORDER BY created_at DESC
LIMIT 1
`

type GetWellnessEntryByDateParams struct {
	AccountID string
	EntryDate string // YYYY-MM-DD
}

func (q *Queries) GetWellnessEntryByDate(ctx context.Context, arg GetWellnessEntryByDateParams) (WellnessEntry, error) {
	row := q.db.QueryRowContext(ctx, getWellnessEntryByDate, arg.AccountID, arg.EntryDate)
	return scanWellnessEntry(row)
}

const createWellnessEntry = `-- name: CreateWellnessEntry :one
INSERT INTO wellness_entries (account_id, mood, energy_level, sleep_hours, notes, habits, entry_date)
VALUES ($1, $2, $3, $4, $5, $6, $7::date)
RETURNING ` + wellnessColumns + `
`

type CreateWellnessEntryParams struct {
	AccountID   string
	Mood        sql.NullInt32
	EnergyLevel sql.NullInt32
	SleepHours  sql.NullFloat64
	Notes       sql.NullString
	Habits      pqtype.NullRawMessage
	EntryDate   string
}

func (q *Queries) CreateWellnessEntry(ctx context.Context, arg CreateWellnessEntryParams) (WellnessEntry, error) {
	row := q.db.QueryRowContext(ctx, createWellnessEntry,
		arg.AccountID,
		arg.Mood,
		arg.EnergyLevel,
		arg.SleepHours,
		arg.Notes,
		arg.Habits,
		arg.EntryDate,
	)
	return scanWellnessEntry(row)
}
