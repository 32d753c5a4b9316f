package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/DukeRupert/mindpilot/internal/ai"
	"github.com/DukeRupert/mindpilot/internal/domain"
	"github.com/DukeRupert/mindpilot/internal/repository"
	"github.com/google/uuid"
)

// QuotaMode selects how AI requests are charged against the daily allowance.
type QuotaMode string

const (
	// QuotaModeSoft evaluates the allowance, calls the model, then records.
	// Two concurrent requests at the boundary can both be admitted.
	QuotaModeSoft QuotaMode = "soft"

	// QuotaModeStrict reserves the allowance with a conditional update before
	// calling the model and releases it if the call fails.
	QuotaModeStrict QuotaMode = "strict"
)

// Premium feature names, used in denial messages and metric labels.
const (
	FeatureSpendingInsights = "spending insights"
	FeatureWellnessInsights = "personalized wellness insights"
	FeatureGoalActionPlans  = "AI-generated action plans"
)

const (
	spendingSampleSize = 50
	wellnessSampleSize = 7

	defaultMood       = 5
	defaultEnergy     = 5
	defaultSleepHours = 7.0
)

// =============================================================================
// Interface Definition
// =============================================================================

// AssistantService runs the AI features behind their entitlement gates.
type AssistantService interface {
	// Chat answers a message and reports the allowance left afterwards.
	Chat(ctx context.Context, account *domain.Account, message, chatContext string) (*domain.ChatReply, error)

	// ChatHistory lists the account's recent chats, newest first.
	ChatHistory(ctx context.Context, accountID string, limit int) ([]domain.AIChat, error)

	// SuggestTasks proposes new tasks from the account's open tasks and active goals.
	SuggestTasks(ctx context.Context, account *domain.Account) ([]domain.TaskSuggestion, error)

	// AnalyzeSpending is premium-only and does not consume the daily allowance.
	AnalyzeSpending(ctx context.Context, account *domain.Account) (string, error)

	// WellnessInsight is premium-only and does not consume the daily allowance.
	WellnessInsight(ctx context.Context, account *domain.Account) (string, error)

	// GoalActionPlan is premium-only. The generated plan is stored on the goal.
	GoalActionPlan(ctx context.Context, account *domain.Account, goalID uuid.UUID) ([]domain.PlanStep, error)
}

// =============================================================================
// Implementation
// =============================================================================

type assistantService struct {
	store        Store
	provider     ai.Provider
	entitlements EntitlementService
	goals        GoalService
	clock        domain.Clock
	mode         QuotaMode
	logger       *slog.Logger
}

// AssistantDeps holds the collaborators of the assistant service.
type AssistantDeps struct {
	Store        Store
	Provider     ai.Provider
	Entitlements EntitlementService
	Goals        GoalService
	Clock        domain.Clock
	Mode         QuotaMode
	Logger       *slog.Logger
}

// NewAssistantService creates a new AssistantService. An empty mode means soft.
func NewAssistantService(deps AssistantDeps) AssistantService {
	mode := deps.Mode
	if mode != QuotaModeStrict {
		mode = QuotaModeSoft
	}
	return &assistantService{
		store:        deps.Store,
		provider:     deps.Provider,
		entitlements: deps.Entitlements,
		goals:        deps.Goals,
		clock:        deps.Clock,
		mode:         mode,
		logger:       deps.Logger,
	}
}

// aiGrant is one admitted AI request waiting to be committed or abandoned.
type aiGrant struct {
	premium  bool
	reserved bool
	used     int
}

// admit applies the daily allowance before a model call.
func (s *assistantService) admit(ctx context.Context, account *domain.Account) (aiGrant, error) {
	premium := account.HasPremium(s.clock.Time())

	if s.mode == QuotaModeStrict && !premium {
		used, err := s.entitlements.ReserveAIUsage(ctx, account.ID)
		if err != nil {
			return aiGrant{}, err
		}
		return aiGrant{reserved: true, used: used}, nil
	}

	decision, err := s.entitlements.CheckAIQuota(ctx, account)
	if err != nil {
		return aiGrant{}, err
	}
	return aiGrant{premium: premium, used: decision.Used}, nil
}

// abandon gives back a reservation after a failed model call.
func (s *assistantService) abandon(ctx context.Context, account *domain.Account, g aiGrant) {
	if !g.reserved {
		return
	}
	if err := s.entitlements.ReleaseAIUsage(ctx, account.ID); err != nil {
		s.logger.Warn("AI reservation not released", "account_id", account.ID, "error", err)
	}
}

// commit charges a successful model call and returns the allowance left.
// A failed recording is logged by the entitlement service and otherwise
// ignored: the response has already been produced.
func (s *assistantService) commit(ctx context.Context, account *domain.Account, g aiGrant) domain.Allowance {
	if g.reserved {
		return domain.Limited(domain.DailyAILimit - g.used)
	}

	used, err := s.entitlements.RecordAIUsage(ctx, account.ID)
	if err != nil {
		used = g.used + 1
	}
	if g.premium {
		return domain.Unlimited()
	}
	return domain.Limited(domain.DailyAILimit - used)
}

func (s *assistantService) providerError(op string, err error) error {
	s.logger.Error("AI provider call failed", "error", err, "op", op)
	return domain.Unavailable(err, op, "The AI assistant is temporarily unavailable. Please try again.")
}

// Chat answers a free-form message.
func (s *assistantService) Chat(ctx context.Context, account *domain.Account, message, chatContext string) (*domain.ChatReply, error) {
	const op = "assistant.chat"

	message = strings.TrimSpace(message)
	if message == "" {
		return nil, domain.Invalid(op, "Message is required")
	}

	grant, err := s.admit(ctx, account)
	if err != nil {
		return nil, err
	}

	result, err := s.provider.Chat(ctx, ai.ChatParams{
		Message: message,
		Context: strings.TrimSpace(chatContext),
	})
	if err != nil {
		s.abandon(ctx, account, grant)
		return nil, s.providerError(op, err)
	}

	remaining := s.commit(ctx, account, grant)

	if _, err := s.store.CreateAIChat(ctx, repository.CreateAIChatParams{
		AccountID: account.ID,
		Message:   message,
		Response:  result.Text,
		Context:   toNullString(chatContext),
	}); err != nil {
		s.logger.Error("failed to log AI chat", "error", err, "op", op, "account_id", account.ID)
	}

	return &domain.ChatReply{
		Response:  result.Text,
		Remaining: remaining,
	}, nil
}

func (s *assistantService) ChatHistory(ctx context.Context, accountID string, limit int) ([]domain.AIChat, error) {
	const op = "assistant.chat_history"

	rows, err := s.store.ListAIChats(ctx, repository.ListAIChatsParams{
		AccountID: accountID,
		Limit:     int32(domain.ClampChatHistoryLimit(limit)),
	})
	if err != nil {
		s.logger.Error("failed to list AI chats", "error", err, "op", op)
		return nil, domain.Internal(err, op, "failed to list chat history")
	}

	chats := make([]domain.AIChat, len(rows))
	for i, row := range rows {
		chats[i] = repoChatToDomain(row)
	}
	return chats, nil
}

// SuggestTasks proposes tasks for the current time of day.
func (s *assistantService) SuggestTasks(ctx context.Context, account *domain.Account) ([]domain.TaskSuggestion, error) {
	const op = "assistant.suggest_tasks"

	grant, err := s.admit(ctx, account)
	if err != nil {
		return nil, err
	}

	params, err := s.suggestionContext(ctx, op, account.ID)
	if err != nil {
		s.abandon(ctx, account, grant)
		return nil, err
	}

	result, err := s.provider.SuggestTasks(ctx, params)
	if err != nil {
		s.abandon(ctx, account, grant)
		return nil, s.providerError(op, err)
	}

	s.commit(ctx, account, grant)
	return result.Tasks, nil
}

func (s *assistantService) suggestionContext(ctx context.Context, op, accountID string) (ai.SuggestTasksParams, error) {
	tasks, err := s.store.ListTasks(ctx, accountID)
	if err != nil {
		s.logger.Error("failed to list tasks", "error", err, "op", op)
		return ai.SuggestTasksParams{}, domain.Internal(err, op, "failed to load tasks")
	}
	goals, err := s.store.ListGoals(ctx, accountID)
	if err != nil {
		s.logger.Error("failed to list goals", "error", err, "op", op)
		return ai.SuggestTasksParams{}, domain.Internal(err, op, "failed to load goals")
	}

	params := ai.SuggestTasksParams{TimeOfDay: timeOfDay(s.clock.Time())}
	for _, t := range tasks {
		if t.Status != string(domain.TaskStatusCompleted) {
			params.Tasks = append(params.Tasks, t.Title)
		}
	}
	for _, g := range goals {
		if g.Status == string(domain.GoalStatusActive) {
			params.Goals = append(params.Goals, g.Title)
		}
	}
	return params, nil
}

// AnalyzeSpending summarizes the account's recent transactions.
func (s *assistantService) AnalyzeSpending(ctx context.Context, account *domain.Account) (string, error) {
	const op = "assistant.analyze_spending"

	if err := s.entitlements.RequirePremium(account, FeatureSpendingInsights); err != nil {
		return "", err
	}

	rows, err := s.store.ListTransactions(ctx, repository.ListTransactionsParams{
		AccountID: account.ID,
		Limit:     spendingSampleSize,
	})
	if err != nil {
		s.logger.Error("failed to list transactions", "error", err, "op", op)
		return "", domain.Internal(err, op, "failed to load transactions")
	}

	items := make([]ai.SpendingItem, len(rows))
	for i, row := range rows {
		category := row.Category
		if category == "" {
			category = "Uncategorized"
		}
		items[i] = ai.SpendingItem{
			Amount:      row.Amount,
			Type:        row.Type,
			Category:    category,
			Description: domain.NullStringValue(row.Description),
		}
	}

	result, err := s.provider.AnalyzeSpending(ctx, ai.SpendingParams{Transactions: items})
	if err != nil {
		return "", s.providerError(op, err)
	}
	return result.Text, nil
}

// WellnessInsight comments on the last week of check-ins. Missing readings
// are filled with neutral values.
func (s *assistantService) WellnessInsight(ctx context.Context, account *domain.Account) (string, error) {
	const op = "assistant.wellness_insight"

	if err := s.entitlements.RequirePremium(account, FeatureWellnessInsights); err != nil {
		return "", err
	}

	rows, err := s.store.ListWellnessEntries(ctx, repository.ListWellnessEntriesParams{
		AccountID: account.ID,
		Limit:     wellnessSampleSize,
	})
	if err != nil {
		s.logger.Error("failed to list wellness entries", "error", err, "op", op)
		return "", domain.Internal(err, op, "failed to load wellness entries")
	}

	samples := make([]ai.WellnessSample, len(rows))
	for i, row := range rows {
		mood, energy, sleep := defaultMood, defaultEnergy, defaultSleepHours
		if row.Mood.Valid {
			mood = int(row.Mood.Int32)
		}
		if row.EnergyLevel.Valid {
			energy = int(row.EnergyLevel.Int32)
		}
		if row.SleepHours.Valid {
			sleep = row.SleepHours.Float64
		}
		samples[i] = ai.WellnessSample{Mood: &mood, EnergyLevel: &energy, SleepHours: &sleep}
	}

	result, err := s.provider.WellnessInsight(ctx, ai.WellnessParams{Entries: samples})
	if err != nil {
		return "", s.providerError(op, err)
	}
	return result.Text, nil
}

// GoalActionPlan generates and stores a four-week plan for a goal.
func (s *assistantService) GoalActionPlan(ctx context.Context, account *domain.Account, goalID uuid.UUID) ([]domain.PlanStep, error) {
	const op = "assistant.goal_action_plan"

	if err := s.entitlements.RequirePremium(account, FeatureGoalActionPlans); err != nil {
		return nil, err
	}

	goal, err := s.goals.Get(ctx, goalID, account.ID)
	if err != nil {
		return nil, err
	}

	result, err := s.provider.GoalActionPlan(ctx, ai.GoalPlanParams{
		Title:       goal.Title,
		Description: goal.Description,
	})
	if err != nil {
		return nil, s.providerError(op, err)
	}

	if _, err := s.goals.SetActionPlan(ctx, goal.ID, account.ID, result.Plan); err != nil {
		return nil, err
	}
	return result.Plan, nil
}
