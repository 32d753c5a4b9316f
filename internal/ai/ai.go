package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DukeRupert/mindpilot/internal/domain"
)

// Provider defines the interface for the language-model features of the assistant
type Provider interface {
	// Chat answers a free-form message from the user
	Chat(ctx context.Context, params ChatParams) (*TextResult, error)

	// SuggestTasks proposes new tasks from the user's current tasks and goals
	SuggestTasks(ctx context.Context, params SuggestTasksParams) (*SuggestTasksResult, error)

	// AnalyzeSpending summarizes spending patterns
	AnalyzeSpending(ctx context.Context, params SpendingParams) (*TextResult, error)

	// WellnessInsight comments on recent wellness check-ins
	WellnessInsight(ctx context.Context, params WellnessParams) (*TextResult, error)

	// GoalActionPlan breaks a goal into weekly steps
	GoalActionPlan(ctx context.Context, params GoalPlanParams) (*GoalPlanResult, error)
}

// ChatParams contains parameters for a chat turn
type ChatParams struct {
	Message string // What the user asked
	Context string // Optional page or feature the user is on
	History string // Optional summary of recent activity
}

// SuggestTasksParams contains parameters for task suggestions
type SuggestTasksParams struct {
	Tasks     []string // Titles of existing open tasks
	Goals     []string // Titles of active goals
	TimeOfDay string   // "morning", "afternoon", or "evening"
}

// SpendingItem is a single transaction passed to spending analysis
type SpendingItem struct {
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// SpendingParams contains parameters for spending analysis
type SpendingParams struct {
	Transactions []SpendingItem
}

// WellnessSample is one check-in passed to wellness insight
type WellnessSample struct {
	Mood        *int     `json:"mood"`
	EnergyLevel *int     `json:"energyLevel"`
	SleepHours  *float64 `json:"sleepHours"`
}

// WellnessParams contains parameters for wellness insight
type WellnessParams struct {
	Entries []WellnessSample
}

// GoalPlanParams contains parameters for a goal action plan
type GoalPlanParams struct {
	Title       string
	Description string
}

// TextResult is a plain-text model response
type TextResult struct {
	Text  string
	Usage UsageInfo
}

// SuggestTasksResult contains suggested tasks
type SuggestTasksResult struct {
	Tasks []domain.TaskSuggestion
	Usage UsageInfo
}

// GoalPlanResult contains a weekly action plan
type GoalPlanResult struct {
	Plan  []domain.PlanStep
	Usage UsageInfo
}

// UsageInfo tracks API usage for monitoring
type UsageInfo struct {
	Model        string        // AI model used
	InputTokens  int           // Tokens in the request
	OutputTokens int           // Tokens in the response
	Duration     time.Duration // Request duration
}

// ProviderConfig contains common configuration for AI providers
type ProviderConfig struct {
	MaxRetries       int           // Maximum retry attempts for transient errors
	RetryBaseDelay   time.Duration // Base delay for exponential backoff
	RequestTimeout   time.Duration // Timeout for individual requests
	BreakerFailures  uint32        // Consecutive failures before the breaker opens
	BreakerOpenDelay time.Duration // How long the breaker stays open
}

// Error codes for AI provider operations
var (
	// EAIRateLimit indicates the API rate limit has been exceeded
	EAIRateLimit = errors.New("ai provider rate limit exceeded")

	// EAIContentPolicy indicates the request violates content policy
	EAIContentPolicy = errors.New("request violates content policy")

	// EAITimeout indicates the request timed out
	EAITimeout = errors.New("ai request timed out")

	// EAIUnavailable indicates the AI service is temporarily unavailable
	EAIUnavailable = errors.New("ai service temporarily unavailable")

	// EAIUnauthorized indicates invalid API credentials
	EAIUnauthorized = errors.New("ai provider authentication failed")

	// EAIBadResponse indicates the model returned something we could not use
	EAIBadResponse = errors.New("ai provider returned an unusable response")

	// EAICircuitOpen indicates calls are being short-circuited after repeated failures
	EAICircuitOpen = errors.New("ai provider circuit open")
)

// IsRetryable returns true if the error is a transient error that can be retried
func IsRetryable(err error) bool {
	return errors.Is(err, EAIRateLimit) ||
		errors.Is(err, EAITimeout) ||
		errors.Is(err, EAIUnavailable)
}

// WrapError wraps an error with context about the AI operation
func WrapError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("ai %s: %w", operation, err)
}
