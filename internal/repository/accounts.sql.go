package repository

import (
	"context"
	"database/sql"
)

const accountColumns = `id, email, first_name, last_name, profile_image_url, is_premium,
    premium_expires_at, trial_ends_at, ai_responses_used_today, last_ai_reset_date,
    created_at, updated_at`

func scanAccount(row rowScanner) (Account, error) {
	var i Account
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.FirstName,
		&i.LastName,
		&i.ProfileImageUrl,
		&i.IsPremium,
		&i.PremiumExpiresAt,
		&i.TrialEndsAt,
		&i.AiResponsesUsedToday,
		&i.LastAiResetDate,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getAccount = `-- name: GetAccount :one
SELECT ` + accountColumns + `
FROM accounts
WHERE id = $1
`

func (q *Queries) GetAccount(ctx context.Context, id string) (Account, error) {
	row := q.db.QueryRowContext(ctx, getAccount, id)
	return scanAccount(row)
}

const upsertAccount = `-- name: UpsertAccount :one
INSERT INTO accounts (id, email, first_name, last_name, profile_image_url, trial_ends_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET
    email             = COALESCE(EXCLUDED.email, accounts.email),
    first_name        = COALESCE(EXCLUDED.first_name, accounts.first_name),
    last_name         = COALESCE(EXCLUDED.last_name, accounts.last_name),
    profile_image_url = COALESCE(EXCLUDED.profile_image_url, accounts.profile_image_url),
    updated_at        = NOW()
RETURNING ` + accountColumns + `
`

type UpsertAccountParams struct {
	ID              string
	Email           sql.NullString
	FirstName       sql.NullString
	LastName        sql.NullString
	ProfileImageUrl sql.NullString
	TrialEndsAt     sql.NullTime // only applied when the row is inserted
}

func (q *Queries) UpsertAccount(ctx context.Context, arg UpsertAccountParams) (Account, error) {
	row := q.db.QueryRowContext(ctx, upsertAccount,
		arg.ID,
		arg.Email,
		arg.FirstName,
		arg.LastName,
		arg.ProfileImageUrl,
		arg.TrialEndsAt,
	)
	return scanAccount(row)
}

// The rollover branch and the increment happen in one statement so two
// concurrent recordings never lose an update. GREATEST ignores a NULL reset
// date and never moves the date backwards.
const recordAIUsage = `-- name: RecordAIUsage :one
UPDATE accounts SET
    ai_responses_used_today = CASE
        WHEN last_ai_reset_date IS NULL OR last_ai_reset_date < $2::date THEN 1
        ELSE ai_responses_used_today + 1
    END,
    last_ai_reset_date = GREATEST(last_ai_reset_date, $2::date),
    updated_at = NOW()
WHERE id = $1
RETURNING ai_responses_used_today, last_ai_reset_date
`

type RecordAIUsageParams struct {
	ID    string
	Today string // YYYY-MM-DD
}

type AIUsageRow struct {
	AiResponsesUsedToday int32
	LastAiResetDate      sql.NullTime
}

func (q *Queries) RecordAIUsage(ctx context.Context, arg RecordAIUsageParams) (AIUsageRow, error) {
	row := q.db.QueryRowContext(ctx, recordAIUsage, arg.ID, arg.Today)
	var i AIUsageRow
	err := row.Scan(&i.AiResponsesUsedToday, &i.LastAiResetDate)
	return i, err
}

// Same transition as RecordAIUsage, but only applied while the account is
// under the limit for today. Returns sql.ErrNoRows when the quota is spent.
const reserveAIUsage = `-- name: ReserveAIUsage :one
UPDATE accounts SET
    ai_responses_used_today = CASE
        WHEN last_ai_reset_date IS NULL OR last_ai_reset_date < $2::date THEN 1
        ELSE ai_responses_used_today + 1
    END,
    last_ai_reset_date = GREATEST(last_ai_reset_date, $2::date),
    updated_at = NOW()
WHERE id = $1
  AND (last_ai_reset_date IS NULL
       OR last_ai_reset_date < $2::date
       OR ai_responses_used_today < $3)
RETURNING ai_responses_used_today, last_ai_reset_date
`

type ReserveAIUsageParams struct {
	ID    string
	Today string
	Limit int32
}

func (q *Queries) ReserveAIUsage(ctx context.Context, arg ReserveAIUsageParams) (AIUsageRow, error) {
	row := q.db.QueryRowContext(ctx, reserveAIUsage, arg.ID, arg.Today, arg.Limit)
	var i AIUsageRow
	err := row.Scan(&i.AiResponsesUsedToday, &i.LastAiResetDate)
	return i, err
}

const releaseAIUsage = `-- name: ReleaseAIUsage :exec
UPDATE accounts SET
    ai_responses_used_today = GREATEST(ai_responses_used_today - 1, 0),
    updated_at = NOW()
WHERE id = $1 AND last_ai_reset_date = $2::date
`

type ReleaseAIUsageParams struct {
	ID    string
	Today string
}

func (q *Queries) ReleaseAIUsage(ctx context.Context, arg ReleaseAIUsageParams) error {
	_, err := q.db.ExecContext(ctx, releaseAIUsage, arg.ID, arg.Today)
	return err
}

// Zeroes the counter for today. The reset date only moves forward, so a
// counter already dated after today keeps its date.
const resetAIUsage = `-- name: ResetAIUsage :one
UPDATE accounts SET
    ai_responses_used_today = 0,
    last_ai_reset_date = GREATEST(last_ai_reset_date, $2::date),
    updated_at = NOW()
WHERE id = $1
RETURNING ` + accountColumns + `
`

type ResetAIUsageParams struct {
	ID    string
	Today string
}

func (q *Queries) ResetAIUsage(ctx context.Context, arg ResetAIUsageParams) (Account, error) {
	row := q.db.QueryRowContext(ctx, resetAIUsage, arg.ID, arg.Today)
	return scanAccount(row)
}

const setAccountPremium = `-- name: SetAccountPremium :one
UPDATE accounts SET
    is_premium = $2,
    premium_expires_at = $3,
    updated_at = NOW()
WHERE id = $1
RETURNING ` + accountColumns + `
`

type SetAccountPremiumParams struct {
	ID               string
	IsPremium        bool
	PremiumExpiresAt sql.NullTime
}

func (q *Queries) SetAccountPremium(ctx context.Context, arg SetAccountPremiumParams) (Account, error) {
	row := q.db.QueryRowContext(ctx, setAccountPremium, arg.ID, arg.IsPremium, arg.PremiumExpiresAt)
	return scanAccount(row)
}
