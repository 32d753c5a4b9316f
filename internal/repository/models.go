package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

type Account struct {
	ID                   string
	Email                sql.NullString
	FirstName            sql.NullString
	LastName             sql.NullString
	ProfileImageUrl      sql.NullString
	IsPremium            bool
	PremiumExpiresAt     sql.NullTime
	TrialEndsAt          sql.NullTime
	AiResponsesUsedToday int32
	LastAiResetDate      sql.NullTime
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type Task struct {
	ID            uuid.UUID
	AccountID     string
	Title         string
	Description   sql.NullString
	Priority      string
	Status        string
	DueDate       sql.NullTime
	Category      sql.NullString
	IsAiGenerated bool
	CompletedAt   sql.NullTime
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Transaction struct {
	ID          uuid.UUID
	AccountID   string
	Amount      string
	Type        string
	Category    string
	Description sql.NullString
	Date        time.Time
	IsRecurring bool
	CreatedAt   time.Time
}

type Document struct {
	ID        uuid.UUID
	AccountID string
	Title     string
	Content   sql.NullString
	Category  sql.NullString
	Tags      pqtype.NullRawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

type WellnessEntry struct {
	ID          uuid.UUID
	AccountID   string
	Mood        sql.NullInt32
	EnergyLevel sql.NullInt32
	SleepHours  sql.NullFloat64
	Notes       sql.NullString
	Habits      pqtype.NullRawMessage
	EntryDate   time.Time
	CreatedAt   time.Time
}

type Goal struct {
	ID          uuid.UUID
	AccountID   string
	Title       string
	Description sql.NullString
	TargetDate  sql.NullTime
	Status      string
	Progress    int32
	ActionPlan  pqtype.NullRawMessage
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type AiChat struct {
	ID        uuid.UUID
	AccountID string
	Message   string
	Response  string
	Context   sql.NullString
	CreatedAt time.Time
}
