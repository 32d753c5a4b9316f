package domain

import (
	"time"

	"github.com/google/uuid"
)

// WellnessEntry is a daily check-in of mood, energy, sleep, and habits.
// Mood and energy are self-rated on a 1-10 scale.
type WellnessEntry struct {
	ID          uuid.UUID       `json:"id"`
	AccountID   string          `json:"userId"`
	Mood        *int            `json:"mood"`
	EnergyLevel *int            `json:"energyLevel"`
	SleepHours  *float64        `json:"sleepHours"`
	Notes       string          `json:"notes"`
	Habits      map[string]bool `json:"habits"`
	Date        Date            `json:"date"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// CreateWellnessEntryParams contains parameters for a wellness check-in.
type CreateWellnessEntryParams struct {
	AccountID   string
	Mood        *int
	EnergyLevel *int
	SleepHours  *float64
	Notes       string
	Habits      map[string]bool
	Date        Date // Defaults to today
}

// Validate checks score ranges and applies defaults.
func (p *CreateWellnessEntryParams) Validate(op string, today Date) error {
	if p.Mood != nil && (*p.Mood < 1 || *p.Mood > 10) {
		return Invalid(op, "Mood must be between 1 and 10")
	}
	if p.EnergyLevel != nil && (*p.EnergyLevel < 1 || *p.EnergyLevel > 10) {
		return Invalid(op, "Energy level must be between 1 and 10")
	}
	if p.SleepHours != nil && (*p.SleepHours < 0 || *p.SleepHours > 24) {
		return Invalid(op, "Sleep hours must be between 0 and 24")
	}
	if p.Habits == nil {
		p.Habits = map[string]bool{}
	}
	if p.Date.IsZero() {
		p.Date = today
	}
	return nil
}
