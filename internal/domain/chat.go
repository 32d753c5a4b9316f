package domain

import (
	"time"

	"github.com/google/uuid"
)

// Chat history page sizes.
const (
	DefaultChatHistoryLimit = 50
	MaxChatHistoryLimit     = 100
)

// AIChat is one logged assistant exchange.
type AIChat struct {
	ID        uuid.UUID `json:"id"`
	AccountID string    `json:"userId"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	Context   string    `json:"context"`
	CreatedAt time.Time `json:"createdAt"`
}

// ClampChatHistoryLimit returns limit bounded to (0, MaxChatHistoryLimit],
// using the default when limit is not positive.
func ClampChatHistoryLimit(limit int) int {
	if limit <= 0 {
		return DefaultChatHistoryLimit
	}
	if limit > MaxChatHistoryLimit {
		return MaxChatHistoryLimit
	}
	return limit
}

// ChatReply is the result of an assistant chat turn.
type ChatReply struct {
	Response  string    `json:"response"`
	Remaining Allowance `json:"remaining"`
}

// TaskSuggestion is an AI-proposed task.
type TaskSuggestion struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Priority    TaskPriority `json:"priority"`
}
