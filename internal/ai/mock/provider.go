package mock

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/DukeRupert/mindpilot/internal/ai"
	"github.com/DukeRupert/mindpilot/internal/domain"
)

// Provider is a mock AI provider for testing and development
type Provider struct {
	logger *slog.Logger

	mu sync.Mutex

	// Configurable responses for testing
	ChatResponse     string
	ChatError        error
	SuggestResponse  []domain.TaskSuggestion
	SuggestError     error
	SpendingResponse string
	SpendingError    error
	WellnessResponse string
	WellnessError    error
	PlanResponse     []domain.PlanStep
	PlanError        error

	// Call tracking for testing
	ChatCalls     int
	SuggestCalls  int
	SpendingCalls int
	WellnessCalls int
	PlanCalls     int
}

// New creates a new mock AI provider
func New(logger *slog.Logger) *Provider {
	return &Provider{
		logger: logger,
	}
}

var mockUsage = ai.UsageInfo{
	Model:        "mock-ai-v1",
	InputTokens:  120,
	OutputTokens: 60,
	Duration:     50 * time.Millisecond,
}

// Chat echoes the message back with a canned suggestion
func (p *Provider) Chat(ctx context.Context, params ai.ChatParams) (*ai.TextResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ChatCalls++

	if p.ChatError != nil {
		return nil, p.ChatError
	}
	text := p.ChatResponse
	if text == "" {
		text = fmt.Sprintf("You asked: %q. A good next step is to pick one small task and finish it in the next 25 minutes.", params.Message)
	}
	return &ai.TextResult{Text: text, Usage: mockUsage}, nil
}

// SuggestTasks returns three canned suggestions
func (p *Provider) SuggestTasks(ctx context.Context, params ai.SuggestTasksParams) (*ai.SuggestTasksResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.SuggestCalls++

	if p.SuggestError != nil {
		return nil, p.SuggestError
	}
	if p.SuggestResponse != nil {
		return &ai.SuggestTasksResult{Tasks: p.SuggestResponse, Usage: mockUsage}, nil
	}

	return &ai.SuggestTasksResult{
		Tasks: []domain.TaskSuggestion{
			{Title: "Review today's priorities", Description: "Spend five minutes ordering your open tasks", Priority: domain.TaskPriorityHigh},
			{Title: "Take a short walk", Description: "Ten minutes outside to reset your focus", Priority: domain.TaskPriorityMedium},
			{Title: "Log today's expenses", Description: "Record anything you spent since yesterday", Priority: domain.TaskPriorityLow},
		},
		Usage: mockUsage,
	}, nil
}

// AnalyzeSpending returns a canned insight
func (p *Provider) AnalyzeSpending(ctx context.Context, params ai.SpendingParams) (*ai.TextResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.SpendingCalls++

	if p.SpendingError != nil {
		return nil, p.SpendingError
	}
	text := p.SpendingResponse
	if text == "" {
		text = fmt.Sprintf("Reviewed %d transactions. Your largest category deserves a weekly budget; try setting one today.", len(params.Transactions))
	}
	return &ai.TextResult{Text: text, Usage: mockUsage}, nil
}

// WellnessInsight returns a canned insight
func (p *Provider) WellnessInsight(ctx context.Context, params ai.WellnessParams) (*ai.TextResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.WellnessCalls++

	if p.WellnessError != nil {
		return nil, p.WellnessError
	}
	text := p.WellnessResponse
	if text == "" {
		text = "Your energy tracks your sleep closely. Aim for a consistent bedtime this week. You're doing great by checking in!"
	}
	return &ai.TextResult{Text: text, Usage: mockUsage}, nil
}

// GoalActionPlan returns a generic four-week plan
func (p *Provider) GoalActionPlan(ctx context.Context, params ai.GoalPlanParams) (*ai.GoalPlanResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.PlanCalls++

	if p.PlanError != nil {
		return nil, p.PlanError
	}
	if p.PlanResponse != nil {
		return &ai.GoalPlanResult{Plan: p.PlanResponse, Usage: mockUsage}, nil
	}

	plan := make([]domain.PlanStep, 4)
	steps := []struct{ action, milestone string }{
		{"Define what done looks like for %q", "Written success criteria"},
		{"Break %q into weekly tasks", "Task list created"},
		{"Work on %q three times this week", "Three sessions logged"},
		{"Review progress on %q and adjust", "Next month planned"},
	}
	for i, s := range steps {
		plan[i] = domain.PlanStep{
			Week:      i + 1,
			Action:    fmt.Sprintf(s.action, params.Title),
			Milestone: s.milestone,
		}
	}
	return &ai.GoalPlanResult{Plan: plan, Usage: mockUsage}, nil
}

// Reset clears call counters and custom responses for testing
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ChatResponse, p.ChatError, p.ChatCalls = "", nil, 0
	p.SuggestResponse, p.SuggestError, p.SuggestCalls = nil, nil, 0
	p.SpendingResponse, p.SpendingError, p.SpendingCalls = "", nil, 0
	p.WellnessResponse, p.WellnessError, p.WellnessCalls = "", nil, 0
	p.PlanResponse, p.PlanError, p.PlanCalls = nil, nil, 0
}
