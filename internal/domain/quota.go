// Package domain contains core business types and interfaces.
//
// This file defines the freemium entitlement policy: the daily AI allowance,
// the per-feature creation caps, and the lazily-reset daily usage counter.
// Everything here is pure; loading and persisting account state is the
// service layer's job.
package domain

import (
	"encoding/json"
	"strconv"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DailyAILimit is the number of AI responses a free account may receive per
// calendar day.
const DailyAILimit = 15

// FeatureKind identifies a resource whose creation is capped on the free tier.
type FeatureKind string

const (
	FeatureDocument   FeatureKind = "document"
	FeatureActiveGoal FeatureKind = "active_goal"
)

// FeatureLimits maps capped resources to their free-tier limit.
// Documents are cumulative; active goals count only goals with status active.
var FeatureLimits = map[FeatureKind]int{
	FeatureDocument:   10,
	FeatureActiveGoal: 3,
}

// DisplayName returns a human-readable name, e.g. "Active goal".
func (k FeatureKind) DisplayName() string {
	switch k {
	case FeatureActiveGoal:
		return "Active goal"
	default:
		return cases.Title(language.English).String(string(k))
	}
}

func (k FeatureKind) plural() string {
	switch k {
	case FeatureDocument:
		return "documents"
	case FeatureActiveGoal:
		return "goals"
	default:
		return string(k) + "s"
	}
}

// Valid reports whether k is a known capped resource.
func (k FeatureKind) Valid() bool {
	_, ok := FeatureLimits[k]
	return ok
}

// Limit returns the free-tier limit for k.
func (k FeatureKind) Limit() int {
	return FeatureLimits[k]
}

// =============================================================================
// Allowance
// =============================================================================

// Allowance is either Unlimited or Limited(n). The zero value is Limited(0).
//
// Premium accounts get Unlimited; callers must check IsUnlimited before doing
// arithmetic with N.
type Allowance struct {
	unlimited bool
	n         int
}

// Unlimited returns the unbounded allowance.
func Unlimited() Allowance {
	return Allowance{unlimited: true}
}

// Limited returns a finite allowance of n, floored at zero.
func Limited(n int) Allowance {
	if n < 0 {
		n = 0
	}
	return Allowance{n: n}
}

// IsUnlimited reports whether the allowance is unbounded.
func (a Allowance) IsUnlimited() bool {
	return a.unlimited
}

// N returns the finite amount and true, or 0 and false when unlimited.
func (a Allowance) N() (int, bool) {
	if a.unlimited {
		return 0, false
	}
	return a.n, true
}

// Consume returns the allowance left after one more use.
// Unlimited stays unlimited.
func (a Allowance) Consume() Allowance {
	if a.unlimited {
		return a
	}
	return Limited(a.n - 1)
}

func (a Allowance) String() string {
	if a.unlimited {
		return "unlimited"
	}
	return strconv.Itoa(a.n)
}

// MarshalJSON encodes Unlimited as null and Limited(n) as n.
func (a Allowance) MarshalJSON() ([]byte, error) {
	if a.unlimited {
		return []byte("null"), nil
	}
	return json.Marshal(a.n)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (a *Allowance) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = Unlimited()
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*a = Limited(n)
	return nil
}

// =============================================================================
// Daily AI counter
// =============================================================================

// AIUsageState is the persisted daily AI counter of an account.
// UsedToday is only meaningful for the day LastReset; a nil LastReset means
// the account has never used AI.
type AIUsageState struct {
	UsedToday int
	LastReset *Date
}

// IsStale reports whether the counter belongs to a day before today. A reset
// date after today (the clock stepped back) still counts, matching Rollover.
func (s AIUsageState) IsStale(today Date) bool {
	return s.LastReset == nil || s.LastReset.Before(today)
}

// Used returns the effective usage for today, treating a stale counter as zero.
func (s AIUsageState) Used(today Date) int {
	if s.IsStale(today) || s.UsedToday < 0 {
		return 0
	}
	return s.UsedToday
}

// Rollover applies the "new day encountered" transition. It is idempotent
// within a day and never moves LastReset backwards.
func (s AIUsageState) Rollover(today Date) AIUsageState {
	if s.LastReset != nil && !s.LastReset.Before(today) {
		return s
	}
	d := today
	return AIUsageState{UsedToday: 0, LastReset: &d}
}

// Record applies the "usage granted" transition after any needed rollover
// and returns the new state.
func (s AIUsageState) Record(today Date) AIUsageState {
	next := s.Rollover(today)
	next.UsedToday++
	return next
}

// AIQuotaDecision is the outcome of evaluating the daily AI allowance.
type AIQuotaDecision struct {
	Allowed   bool
	Used      int
	Remaining Allowance
}

// EvaluateAIQuota decides whether an account may receive another AI response today.
// It has no side effects.
func EvaluateAIQuota(state AIUsageState, premium bool, today Date) AIQuotaDecision {
	used := state.Used(today)
	if premium {
		return AIQuotaDecision{Allowed: true, Used: used, Remaining: Unlimited()}
	}
	return AIQuotaDecision{
		Allowed:   used < DailyAILimit,
		Used:      used,
		Remaining: Limited(DailyAILimit - used),
	}
}

// EvaluateFeatureCap decides whether an account may create another resource of
// the given kind. currentCount comes from the resource owner's count query.
// Unknown kinds are not capped.
func EvaluateFeatureCap(kind FeatureKind, currentCount int, premium bool) bool {
	if premium {
		return true
	}
	limit, ok := FeatureLimits[kind]
	if !ok {
		return true
	}
	return currentCount < limit
}
