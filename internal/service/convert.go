package service

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/DukeRupert/mindpilot/internal/domain"
	"github.com/DukeRupert/mindpilot/internal/repository"
	"github.com/sqlc-dev/pqtype"
)

// =============================================================================
// Repository -> domain conversions
// =============================================================================

func repoAccountToDomain(a repository.Account) *domain.Account {
	return &domain.Account{
		ID:                   a.ID,
		Email:                domain.NullStringValue(a.Email),
		FirstName:            domain.NullStringValue(a.FirstName),
		LastName:             domain.NullStringValue(a.LastName),
		ProfileImageURL:      domain.NullStringValue(a.ProfileImageUrl),
		IsPremium:            a.IsPremium,
		PremiumExpiresAt:     domain.NullTimeValue(a.PremiumExpiresAt),
		TrialEndsAt:          domain.NullTimeValue(a.TrialEndsAt),
		AIResponsesUsedToday: int(a.AiResponsesUsedToday),
		LastAIResetDate:      domain.NullDateValue(a.LastAiResetDate),
		CreatedAt:            a.CreatedAt,
		UpdatedAt:            a.UpdatedAt,
	}
}

func repoTaskToDomain(t repository.Task) domain.Task {
	return domain.Task{
		ID:            t.ID,
		AccountID:     t.AccountID,
		Title:         t.Title,
		Description:   domain.NullStringValue(t.Description),
		Priority:      domain.TaskPriority(t.Priority),
		Status:        domain.TaskStatus(t.Status),
		DueDate:       domain.NullTimeValue(t.DueDate),
		Category:      domain.NullStringValue(t.Category),
		IsAIGenerated: t.IsAiGenerated,
		CompletedAt:   domain.NullTimeValue(t.CompletedAt),
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func repoTransactionToDomain(t repository.Transaction) domain.Transaction {
	return domain.Transaction{
		ID:          t.ID,
		AccountID:   t.AccountID,
		Amount:      t.Amount,
		Type:        domain.TransactionType(t.Type),
		Category:    t.Category,
		Description: domain.NullStringValue(t.Description),
		Date:        t.Date,
		IsRecurring: t.IsRecurring,
		CreatedAt:   t.CreatedAt,
	}
}

func repoDocumentToDomain(d repository.Document) domain.Document {
	tags := []string{}
	decodeJSON(d.Tags, &tags)
	return domain.Document{
		ID:        d.ID,
		AccountID: d.AccountID,
		Title:     d.Title,
		Content:   domain.NullStringValue(d.Content),
		Category:  domain.NullStringValue(d.Category),
		Tags:      tags,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func repoWellnessToDomain(w repository.WellnessEntry) domain.WellnessEntry {
	habits := map[string]bool{}
	decodeJSON(w.Habits, &habits)
	return domain.WellnessEntry{
		ID:          w.ID,
		AccountID:   w.AccountID,
		Mood:        nullInt32Ptr(w.Mood),
		EnergyLevel: nullInt32Ptr(w.EnergyLevel),
		SleepHours:  nullFloat64Ptr(w.SleepHours),
		Notes:       domain.NullStringValue(w.Notes),
		Habits:      habits,
		Date:        domain.DateOf(w.EntryDate.UTC()),
		CreatedAt:   w.CreatedAt,
	}
}

func repoGoalToDomain(g repository.Goal) domain.Goal {
	var plan []domain.PlanStep
	decodeJSON(g.ActionPlan, &plan)
	return domain.Goal{
		ID:          g.ID,
		AccountID:   g.AccountID,
		Title:       g.Title,
		Description: domain.NullStringValue(g.Description),
		TargetDate:  domain.NullTimeValue(g.TargetDate),
		Status:      domain.GoalStatus(g.Status),
		Progress:    int(g.Progress),
		ActionPlan:  plan,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

func repoChatToDomain(c repository.AiChat) domain.AIChat {
	return domain.AIChat{
		ID:        c.ID,
		AccountID: c.AccountID,
		Message:   c.Message,
		Response:  c.Response,
		Context:   domain.NullStringValue(c.Context),
		CreatedAt: c.CreatedAt,
	}
}

// =============================================================================
// Helpers
// =============================================================================

// toNullString converts a string to sql.NullString, treating blank as NULL.
func toNullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{
		String: s,
		Valid:  s != "",
	}
}

func toNullInt32(p *int) sql.NullInt32 {
	if p == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*p), Valid: true}
}

func toNullFloat64(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func nullInt32Ptr(n sql.NullInt32) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int32)
	return &v
}

func nullFloat64Ptr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

// toNullJSON encodes v for a JSONB column.
func toNullJSON(v any) (pqtype.NullRawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return pqtype.NullRawMessage{}, err
	}
	return pqtype.NullRawMessage{RawMessage: data, Valid: true}, nil
}

// decodeJSON leaves dst untouched when the column is NULL or malformed.
func decodeJSON(m pqtype.NullRawMessage, dst any) {
	if !m.Valid || len(m.RawMessage) == 0 {
		return
	}
	_ = json.Unmarshal(m.RawMessage, dst)
}

func timeOfDay(t time.Time) string {
	switch h := t.Hour(); {
	case h < 12:
		return "morning"
	case h < 17:
		return "afternoon"
	default:
		return "evening"
	}
}
