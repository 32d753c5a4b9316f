// Package domain contains core business types and interfaces.
//
// This file defines the Task domain type and related types.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Task Priority and Status
// =============================================================================

// TaskPriority is the user-assigned importance of a task.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// IsValid returns true if the priority is a recognized value.
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// TaskStatus represents the progress state of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// IsValid returns true if the status is a recognized value.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// =============================================================================
// Task Domain Type
// =============================================================================

// Task is a to-do item owned by an account.
type Task struct {
	ID            uuid.UUID    `json:"id"`
	AccountID     string       `json:"userId"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Priority      TaskPriority `json:"priority"`
	Status        TaskStatus   `json:"status"`
	DueDate       *time.Time   `json:"dueDate"`
	Category      string       `json:"category"`
	IsAIGenerated bool         `json:"isAiGenerated"`
	CompletedAt   *time.Time   `json:"completedAt"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// IsOpen returns true if the task has not been completed.
func (t *Task) IsOpen() bool {
	return t.Status != TaskStatusCompleted
}

// CreateTaskParams contains parameters for creating a task.
type CreateTaskParams struct {
	AccountID     string
	Title         string
	Description   string
	Priority      TaskPriority // Defaults to medium
	DueDate       *time.Time
	Category      string
	IsAIGenerated bool
}

// Validate checks required fields and applies defaults.
func (p *CreateTaskParams) Validate(op string) error {
	if p.Title == "" {
		return Invalid(op, "Task title is required")
	}
	if p.Priority == "" {
		p.Priority = TaskPriorityMedium
	}
	if !p.Priority.IsValid() {
		return Invalid(op, "Priority must be low, medium, or high")
	}
	return nil
}

// UpdateTaskParams contains a partial task update. Nil fields are left unchanged.
type UpdateTaskParams struct {
	ID          uuid.UUID
	AccountID   string
	Title       *string
	Description *string
	Priority    *TaskPriority
	Status      *TaskStatus
	DueDate     *time.Time
	Category    *string
}

// Validate checks the supplied fields.
func (p *UpdateTaskParams) Validate(op string) error {
	if p.Title != nil && *p.Title == "" {
		return Invalid(op, "Task title cannot be empty")
	}
	if p.Priority != nil && !p.Priority.IsValid() {
		return Invalid(op, "Priority must be low, medium, or high")
	}
	if p.Status != nil && !p.Status.IsValid() {
		return Invalid(op, "Status must be pending, in_progress, or completed")
	}
	return nil
}

// Apply merges the update into t. Moving into completed stamps CompletedAt;
// moving out of completed clears it.
func (p *UpdateTaskParams) Apply(t *Task, now time.Time) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		t.DueDate = p.DueDate
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Status != nil && *p.Status != t.Status {
		t.Status = *p.Status
		if t.Status == TaskStatusCompleted {
			completed := now
			t.CompletedAt = &completed
		} else {
			t.CompletedAt = nil
		}
	}
}
