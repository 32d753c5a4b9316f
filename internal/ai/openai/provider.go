package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/DukeRupert/mindpilot/internal/ai"
	"github.com/DukeRupert/mindpilot/internal/domain"
	"github.com/DukeRupert/mindpilot/internal/metrics"
	goopenai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker/v2"
)

const (
	// DefaultModel is the default chat model to use
	DefaultModel = goopenai.GPT4oMini

	// Completion token ceilings per feature
	chatMaxTokens     = 1000
	suggestMaxTokens  = 500
	spendingMaxTokens = 300
	wellnessMaxTokens = 200
	planMaxTokens     = 500
)

// Config contains configuration for the OpenAI provider
type Config struct {
	APIKey         string
	Model          string
	BaseURL        string // Optional, for OpenAI-compatible gateways
	ProviderConfig ai.ProviderConfig
}

// Provider implements ai.Provider using the OpenAI chat completions API
type Provider struct {
	config  Config
	client  *goopenai.Client
	breaker *gobreaker.CircuitBreaker[goopenai.ChatCompletionResponse]
	logger  *slog.Logger
}

// New creates a new OpenAI provider
func New(config Config, logger *slog.Logger) (*Provider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	// Set defaults
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.ProviderConfig.MaxRetries == 0 {
		config.ProviderConfig.MaxRetries = 3
	}
	if config.ProviderConfig.RetryBaseDelay == 0 {
		config.ProviderConfig.RetryBaseDelay = 1 * time.Second
	}
	if config.ProviderConfig.RequestTimeout == 0 {
		config.ProviderConfig.RequestTimeout = 60 * time.Second
	}
	if config.ProviderConfig.BreakerFailures == 0 {
		config.ProviderConfig.BreakerFailures = 5
	}
	if config.ProviderConfig.BreakerOpenDelay == 0 {
		config.ProviderConfig.BreakerOpenDelay = 30 * time.Second
	}

	clientConfig := goopenai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{Timeout: config.ProviderConfig.RequestTimeout}

	p := &Provider{
		config: config,
		client: goopenai.NewClientWithConfig(clientConfig),
		logger: logger,
	}
	p.breaker = gobreaker.NewCircuitBreaker[goopenai.ChatCompletionResponse](gobreaker.Settings{
		Name:        "openai",
		MaxRequests: 1,
		Timeout:     config.ProviderConfig.BreakerOpenDelay,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.ProviderConfig.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("AI circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
			if to == gobreaker.StateOpen {
				metrics.BreakerOpened()
			} else {
				metrics.BreakerClosed()
			}
		},
		// Caller mistakes and cancellations say nothing about provider health
		IsExcluded: func(err error) bool {
			return errors.Is(err, context.Canceled) ||
				errors.Is(err, ai.EAIContentPolicy) ||
				errors.Is(err, ai.EAIBadResponse)
		},
	})

	return p, nil
}

// Chat answers a free-form user message
func (p *Provider) Chat(ctx context.Context, params ai.ChatParams) (*ai.TextResult, error) {
	resp, usage, err := p.complete(ctx, "chat", goopenai.ChatCompletionRequest{
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: buildChatSystemPrompt(params)},
			{Role: goopenai.ChatMessageRoleUser, Content: params.Message},
		},
		MaxCompletionTokens: chatMaxTokens,
	})
	if err != nil {
		return nil, ai.WrapError("chat", err)
	}
	return &ai.TextResult{Text: resp, Usage: usage}, nil
}

// SuggestTasks proposes three new tasks
func (p *Provider) SuggestTasks(ctx context.Context, params ai.SuggestTasksParams) (*ai.SuggestTasksResult, error) {
	content, usage, err := p.complete(ctx, "suggest_tasks", goopenai.ChatCompletionRequest{
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: suggestSystemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: buildSuggestTasksPrompt(params)},
		},
		ResponseFormat:      &goopenai.ChatCompletionResponseFormat{Type: goopenai.ChatCompletionResponseFormatTypeJSONObject},
		MaxCompletionTokens: suggestMaxTokens,
	})
	if err != nil {
		return nil, ai.WrapError("suggest tasks", err)
	}

	var parsed struct {
		Tasks []domain.TaskSuggestion `json:"tasks"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, ai.WrapError("parse task suggestions", fmt.Errorf("%w: %v", ai.EAIBadResponse, err))
	}

	tasks := make([]domain.TaskSuggestion, 0, len(parsed.Tasks))
	for _, t := range parsed.Tasks {
		if strings.TrimSpace(t.Title) == "" {
			continue
		}
		if !t.Priority.IsValid() {
			t.Priority = domain.TaskPriorityMedium
		}
		tasks = append(tasks, t)
	}
	return &ai.SuggestTasksResult{Tasks: tasks, Usage: usage}, nil
}

// AnalyzeSpending summarizes spending patterns
func (p *Provider) AnalyzeSpending(ctx context.Context, params ai.SpendingParams) (*ai.TextResult, error) {
	prompt, err := buildSpendingPrompt(params)
	if err != nil {
		return nil, ai.WrapError("build spending prompt", err)
	}
	content, usage, err := p.complete(ctx, "spending_analysis", goopenai.ChatCompletionRequest{
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: spendingSystemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
		MaxCompletionTokens: spendingMaxTokens,
	})
	if err != nil {
		return nil, ai.WrapError("analyze spending", err)
	}
	return &ai.TextResult{Text: content, Usage: usage}, nil
}

// WellnessInsight comments on recent check-ins
func (p *Provider) WellnessInsight(ctx context.Context, params ai.WellnessParams) (*ai.TextResult, error) {
	prompt, err := buildWellnessPrompt(params)
	if err != nil {
		return nil, ai.WrapError("build wellness prompt", err)
	}
	content, usage, err := p.complete(ctx, "wellness_insight", goopenai.ChatCompletionRequest{
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: wellnessSystemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
		MaxCompletionTokens: wellnessMaxTokens,
	})
	if err != nil {
		return nil, ai.WrapError("wellness insight", err)
	}
	return &ai.TextResult{Text: content, Usage: usage}, nil
}

// GoalActionPlan breaks a goal into four weekly steps
func (p *Provider) GoalActionPlan(ctx context.Context, params ai.GoalPlanParams) (*ai.GoalPlanResult, error) {
	content, usage, err := p.complete(ctx, "goal_plan", goopenai.ChatCompletionRequest{
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: planSystemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: buildGoalPlanPrompt(params)},
		},
		ResponseFormat:      &goopenai.ChatCompletionResponseFormat{Type: goopenai.ChatCompletionResponseFormatTypeJSONObject},
		MaxCompletionTokens: planMaxTokens,
	})
	if err != nil {
		return nil, ai.WrapError("goal plan", err)
	}

	var parsed struct {
		Plan []domain.PlanStep `json:"plan"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, ai.WrapError("parse goal plan", fmt.Errorf("%w: %v", ai.EAIBadResponse, err))
	}
	if len(parsed.Plan) == 0 {
		return nil, ai.WrapError("parse goal plan", fmt.Errorf("%w: empty plan", ai.EAIBadResponse))
	}
	return &ai.GoalPlanResult{Plan: parsed.Plan, Usage: usage}, nil
}

// complete runs one chat completion through the breaker and retry loop and
// returns the first choice's content.
func (p *Provider) complete(ctx context.Context, feature string, req goopenai.ChatCompletionRequest) (string, ai.UsageInfo, error) {
	req.Model = p.config.Model
	start := time.Now()

	resp, err := p.breaker.Execute(func() (goopenai.ChatCompletionResponse, error) {
		return p.executeWithRetry(ctx, req)
	})
	duration := time.Since(start)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.AIRequestRejected(feature)
			return "", ai.UsageInfo{}, ai.EAICircuitOpen
		}
		metrics.AIRequestFailed(feature, duration)
		return "", ai.UsageInfo{}, err
	}

	usage := ai.UsageInfo{
		Model:        resp.Model,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		Duration:     duration,
	}
	metrics.AIRequestCompleted(feature, duration, usage.InputTokens, usage.OutputTokens)

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", usage, fmt.Errorf("%w: empty completion", ai.EAIBadResponse)
	}

	p.logger.Debug("AI completion",
		"feature", feature,
		"model", usage.Model,
		"input_tokens", usage.InputTokens,
		"output_tokens", usage.OutputTokens,
		"duration_ms", duration.Milliseconds(),
	)
	return resp.Choices[0].Message.Content, usage, nil
}

func (p *Provider) executeWithRetry(ctx context.Context, req goopenai.ChatCompletionRequest) (goopenai.ChatCompletionResponse, error) {
	var lastErr error

	for attempt := 1; attempt <= p.config.ProviderConfig.MaxRetries; attempt++ {
		resp, err := p.client.CreateChatCompletion(ctx, req)
		if err == nil {
			return resp, nil
		}

		lastErr = mapError(ctx, err)

		// Only retry on retryable errors
		if !ai.IsRetryable(lastErr) {
			return goopenai.ChatCompletionResponse{}, lastErr
		}

		// Don't retry if we've exhausted attempts
		if attempt >= p.config.ProviderConfig.MaxRetries {
			break
		}

		// Calculate backoff delay (exponential: base * 2^(attempt-1))
		delay := p.config.ProviderConfig.RetryBaseDelay * time.Duration(1<<(attempt-1))
		p.logger.Info("Retrying AI request", "attempt", attempt, "delay", delay, "error", err)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return goopenai.ChatCompletionResponse{}, ctx.Err()
		}
	}

	return goopenai.ChatCompletionResponse{}, lastErr
}

// mapError maps client errors to the provider error codes
func mapError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: %v", ai.EAITimeout, err)
		}
		return ctx.Err()
	}

	status := 0
	var apiErr *goopenai.APIError
	var reqErr *goopenai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	default:
		// Network errors are typically retryable
		return fmt.Errorf("%w: %v", ai.EAIUnavailable, err)
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %v", ai.EAIUnauthorized, err)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %v", ai.EAIRateLimit, err)
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %v", ai.EAITimeout, err)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %v", ai.EAIContentPolicy, err)
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return fmt.Errorf("%w: %v", ai.EAIUnavailable, err)
	default:
		return fmt.Errorf("openai status %d: %w", status, err)
	}
}
