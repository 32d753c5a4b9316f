// Package domain contains core business types and interfaces.
//
// This file defines the Account type. Identity fields (email, names, picture)
// are owned by the identity provider and copied in on sign-in; the premium
// and AI-usage fields are owned by the entitlement service.
package domain

import (
	"database/sql"
	"time"
)

// Account represents a registered user of MindPilot.
//
// ID is the subject issued by the identity provider (a Firebase UID or an
// OAuth subject), not a database-generated key.
type Account struct {
	ID               string     `json:"id"`
	Email            string     `json:"email,omitempty"`
	FirstName        string     `json:"firstName,omitempty"`
	LastName         string     `json:"lastName,omitempty"`
	ProfileImageURL  string     `json:"profileImageUrl,omitempty"`
	IsPremium        bool       `json:"isPremium"`
	PremiumExpiresAt *time.Time `json:"premiumExpiresAt"`
	TrialEndsAt      *time.Time `json:"trialEndsAt"`

	AIResponsesUsedToday int   `json:"aiResponsesUsedToday"`
	LastAIResetDate      *Date `json:"lastAiResetDate"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasPremium reports whether the account currently has premium access.
//
// The premium flag counts only while premium_expires_at is unset or in the
// future; an unexpired trial also grants premium access. Expiry is evaluated
// here, at read time, rather than by a background sweep.
func (a *Account) HasPremium(now time.Time) bool {
	if a.IsPremium && (a.PremiumExpiresAt == nil || now.Before(*a.PremiumExpiresAt)) {
		return true
	}
	return a.InTrial(now)
}

// InTrial reports whether the account is inside an unexpired trial window.
func (a *Account) InTrial(now time.Time) bool {
	return a.TrialEndsAt != nil && now.Before(*a.TrialEndsAt)
}

// AIUsage returns the account's daily AI counter state.
func (a *Account) AIUsage() AIUsageState {
	return AIUsageState{
		UsedToday: a.AIResponsesUsedToday,
		LastReset: a.LastAIResetDate,
	}
}

// DisplayName returns the account's full name or email if names are empty.
func (a *Account) DisplayName() string {
	name := a.FirstName
	if a.LastName != "" {
		if name != "" {
			name += " "
		}
		name += a.LastName
	}
	if name != "" {
		return name
	}
	return a.Email
}

// Identity is the set of claims the identity provider asserts about the caller.
type Identity struct {
	Subject         string
	Email           string
	FirstName       string
	LastName        string
	ProfileImageURL string
}

// QuotaUsage is the entitlement summary reported to clients.
type QuotaUsage struct {
	IsPremium            bool       `json:"isPremium"`
	InTrial              bool       `json:"inTrial"`
	ExpiresAt            *time.Time `json:"expiresAt"`
	TrialEndsAt          *time.Time `json:"trialEndsAt"`
	AIResponsesUsedToday int        `json:"aiResponsesUsedToday"`
	AILimit              Allowance  `json:"aiLimit"`
	AIRemaining          Allowance  `json:"aiRemaining"`
}

// =============================================================================
// Conversion helpers from repository types
// =============================================================================

// NullStringValue safely extracts a string from sql.NullString.
func NullStringValue(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// NullTimeValue safely extracts a time pointer from sql.NullTime.
func NullTimeValue(nt sql.NullTime) *time.Time {
	if nt.Valid {
		return &nt.Time
	}
	return nil
}

// NullDateValue extracts a calendar date from a DATE column.
// The driver returns DATE values as midnight UTC.
func NullDateValue(nt sql.NullTime) *Date {
	if !nt.Valid {
		return nil
	}
	d := DateOf(nt.Time.UTC())
	return &d
}

// NullString converts an optional string to sql.NullString.
func NullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// NullTime converts an optional time to sql.NullTime.
func NullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
