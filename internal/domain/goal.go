// Package domain contains core business types and interfaces.
//
// This file defines the Goal domain type. Only goals in the active status
// count toward the free-tier active-goal cap; completing or pausing a goal
// frees a slot.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// GoalStatus represents the lifecycle state of a goal.
type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "active"
	GoalStatusCompleted GoalStatus = "completed"
	GoalStatusPaused    GoalStatus = "paused"
)

// IsValid returns true if the status is a recognized value.
func (s GoalStatus) IsValid() bool {
	switch s {
	case GoalStatusActive, GoalStatusCompleted, GoalStatusPaused:
		return true
	}
	return false
}

// PlanStep is one week of a generated goal action plan.
type PlanStep struct {
	Week      int    `json:"week"`
	Action    string `json:"action"`
	Milestone string `json:"milestone"`
}

// Goal is a longer-running objective with optional AI-generated plan.
type Goal struct {
	ID          uuid.UUID  `json:"id"`
	AccountID   string     `json:"userId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	TargetDate  *time.Time `json:"targetDate"`
	Status      GoalStatus `json:"status"`
	Progress    int        `json:"progress"`
	ActionPlan  []PlanStep `json:"actionPlan"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// IsActive reports whether the goal occupies an active-goal slot.
func (g *Goal) IsActive() bool {
	return g.Status == GoalStatusActive
}

// CreateGoalParams contains parameters for creating a goal.
// New goals always start active.
type CreateGoalParams struct {
	AccountID   string
	Title       string
	Description string
	TargetDate  *time.Time
}

// Validate checks required fields.
func (p *CreateGoalParams) Validate(op string) error {
	if p.Title == "" {
		return Invalid(op, "Goal title is required")
	}
	return nil
}

// UpdateGoalParams contains a partial goal update.
type UpdateGoalParams struct {
	ID          uuid.UUID
	AccountID   string
	Title       *string
	Description *string
	TargetDate  *time.Time
	Status      *GoalStatus
	Progress    *int
}

// Validate checks the supplied fields.
func (p *UpdateGoalParams) Validate(op string) error {
	if p.Title != nil && *p.Title == "" {
		return Invalid(op, "Goal title cannot be empty")
	}
	if p.Status != nil && !p.Status.IsValid() {
		return Invalid(op, "Status must be active, completed, or paused")
	}
	if p.Progress != nil && (*p.Progress < 0 || *p.Progress > 100) {
		return Invalid(op, "Progress must be between 0 and 100")
	}
	return nil
}

// Reactivates reports whether applying the update moves g into the active
// status, which takes an active-goal slot.
func (p *UpdateGoalParams) Reactivates(g *Goal) bool {
	return p.Status != nil && *p.Status == GoalStatusActive && g.Status != GoalStatusActive
}

// Apply merges the update into g.
func (p *UpdateGoalParams) Apply(g *Goal) {
	if p.Title != nil {
		g.Title = *p.Title
	}
	if p.Description != nil {
		g.Description = *p.Description
	}
	if p.TargetDate != nil {
		g.TargetDate = p.TargetDate
	}
	if p.Status != nil {
		g.Status = *p.Status
	}
	if p.Progress != nil {
		g.Progress = *p.Progress
	}
}
