package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/DukeRupert/mindpilot/internal/auth"
	"github.com/DukeRupert/mindpilot/internal/domain"
	"github.com/google/uuid"
)

// =============================================================================
// Service fakes
// =============================================================================

type fakeTasks struct {
	tasks   []domain.Task
	created []domain.CreateTaskParams
	updated []domain.UpdateTaskParams
	err     error
}

func (f *fakeTasks) List(ctx context.Context, accountID string) ([]domain.Task, error) {
	var out []domain.Task
	for _, t := range f.tasks {
		if t.AccountID == accountID {
			out = append(out, t)
		}
	}
	return out, f.err
}

func (f *fakeTasks) Create(ctx context.Context, params domain.CreateTaskParams) (*domain.Task, error) {
	if err := params.Validate("task.create"); err != nil {
		return nil, err
	}
	f.created = append(f.created, params)
	return &domain.Task{ID: uuid.New(), AccountID: params.AccountID, Title: params.Title, Priority: params.Priority, Status: domain.TaskStatusPending}, nil
}

func (f *fakeTasks) Update(ctx context.Context, params domain.UpdateTaskParams) (*domain.Task, error) {
	f.updated = append(f.updated, params)
	for _, t := range f.tasks {
		if t.ID == params.ID && t.AccountID == params.AccountID {
			params.Apply(&t, time.Now())
			return &t, nil
		}
	}
	return nil, domain.NotFound("task.update", "Task", params.ID.String())
}

func (f *fakeTasks) Delete(ctx context.Context, id uuid.UUID, accountID string) error {
	for _, t := range f.tasks {
		if t.ID == id && t.AccountID == accountID {
			return nil
		}
	}
	return domain.NotFound("task.delete", "Task", id.String())
}

type fakeTransactions struct {
	created []domain.CreateTransactionParams
	limit   int
}

func (f *fakeTransactions) List(ctx context.Context, accountID string, limit int) ([]domain.Transaction, error) {
	f.limit = limit
	return []domain.Transaction{}, nil
}

func (f *fakeTransactions) Create(ctx context.Context, params domain.CreateTransactionParams) (*domain.Transaction, error) {
	if err := params.Validate("transaction.create", time.Now()); err != nil {
		return nil, err
	}
	f.created = append(f.created, params)
	return &domain.Transaction{ID: uuid.New(), AccountID: params.AccountID, Amount: params.Amount, Type: params.Type}, nil
}

func (f *fakeTransactions) Delete(ctx context.Context, id uuid.UUID, accountID string) error {
	return nil
}

type fakeDocuments struct {
	capErr  error
	created []domain.CreateDocumentParams
}

func (f *fakeDocuments) List(ctx context.Context, accountID string) ([]domain.Document, error) {
	return []domain.Document{}, nil
}

func (f *fakeDocuments) Create(ctx context.Context, account *domain.Account, params domain.CreateDocumentParams) (*domain.Document, error) {
	if f.capErr != nil {
		return nil, f.capErr
	}
	params.AccountID = account.ID
	f.created = append(f.created, params)
	return &domain.Document{ID: uuid.New(), AccountID: account.ID, Title: params.Title, Tags: params.Tags}, nil
}

func (f *fakeDocuments) Update(ctx context.Context, params domain.UpdateDocumentParams) (*domain.Document, error) {
	return &domain.Document{ID: params.ID, AccountID: params.AccountID}, nil
}

func (f *fakeDocuments) Delete(ctx context.Context, id uuid.UUID, accountID string) error {
	return nil
}

type fakeWellness struct {
	today   *domain.WellnessEntry
	created []domain.CreateWellnessEntryParams
}

func (f *fakeWellness) List(ctx context.Context, accountID string, limit int) ([]domain.WellnessEntry, error) {
	return []domain.WellnessEntry{}, nil
}

func (f *fakeWellness) Create(ctx context.Context, params domain.CreateWellnessEntryParams) (*domain.WellnessEntry, error) {
	f.created = append(f.created, params)
	return &domain.WellnessEntry{ID: uuid.New(), AccountID: params.AccountID, Date: params.Date}, nil
}

func (f *fakeWellness) Today(ctx context.Context, accountID string) (*domain.WellnessEntry, error) {
	return f.today, nil
}

type fakeGoals struct {
	capErr  error
	updated []domain.UpdateGoalParams
}

func (f *fakeGoals) List(ctx context.Context, accountID string) ([]domain.Goal, error) {
	return []domain.Goal{}, nil
}

func (f *fakeGoals) Get(ctx context.Context, id uuid.UUID, accountID string) (*domain.Goal, error) {
	return nil, domain.NotFound("goal.get", "Goal", id.String())
}

func (f *fakeGoals) Create(ctx context.Context, account *domain.Account, params domain.CreateGoalParams) (*domain.Goal, error) {
	if f.capErr != nil {
		return nil, f.capErr
	}
	return &domain.Goal{ID: uuid.New(), AccountID: account.ID, Title: params.Title, Status: domain.GoalStatusActive}, nil
}

func (f *fakeGoals) Update(ctx context.Context, account *domain.Account, params domain.UpdateGoalParams) (*domain.Goal, error) {
	f.updated = append(f.updated, params)
	return &domain.Goal{ID: params.ID, AccountID: account.ID}, nil
}

func (f *fakeGoals) SetActionPlan(ctx context.Context, id uuid.UUID, accountID string, plan []domain.PlanStep) (*domain.Goal, error) {
	return nil, fmt.Errorf("not used by handlers")
}

func (f *fakeGoals) Delete(ctx context.Context, id uuid.UUID, accountID string) error {
	return nil
}

// fakeAssistant applies a simple free-tier counter so handler tests can
// observe the quota contract end to end.
type fakeAssistant struct {
	used        map[string]int
	providerErr error
	chats       []domain.AIChat
	historyArg  int
}

func (f *fakeAssistant) admit(account *domain.Account) (domain.Allowance, error) {
	if f.providerErr != nil {
		return domain.Allowance{}, f.providerErr
	}
	if account.IsPremium {
		return domain.Unlimited(), nil
	}
	if f.used[account.ID] >= domain.DailyAILimit {
		return domain.Allowance{}, domain.QuotaExceeded("assistant.chat", f.used[account.ID], domain.DailyAILimit)
	}
	f.used[account.ID]++
	return domain.Limited(domain.DailyAILimit - f.used[account.ID]), nil
}

func (f *fakeAssistant) Chat(ctx context.Context, account *domain.Account, message, chatContext string) (*domain.ChatReply, error) {
	if message == "" {
		return nil, domain.Invalid("assistant.chat", "Message is required")
	}
	remaining, err := f.admit(account)
	if err != nil {
		return nil, err
	}
	return &domain.ChatReply{Response: "echo: " + message, Remaining: remaining}, nil
}

func (f *fakeAssistant) ChatHistory(ctx context.Context, accountID string, limit int) ([]domain.AIChat, error) {
	f.historyArg = limit
	return f.chats, nil
}

func (f *fakeAssistant) SuggestTasks(ctx context.Context, account *domain.Account) ([]domain.TaskSuggestion, error) {
	if _, err := f.admit(account); err != nil {
		return nil, err
	}
	return []domain.TaskSuggestion{{Title: "Stretch", Priority: domain.TaskPriorityLow}}, nil
}

func (f *fakeAssistant) premium(account *domain.Account, feature string) error {
	if !account.IsPremium {
		return domain.PremiumRequired("assistant", feature)
	}
	return f.providerErr
}

func (f *fakeAssistant) AnalyzeSpending(ctx context.Context, account *domain.Account) (string, error) {
	if err := f.premium(account, "spending insights"); err != nil {
		return "", err
	}
	return "You spend most on coffee.", nil
}

func (f *fakeAssistant) WellnessInsight(ctx context.Context, account *domain.Account) (string, error) {
	if err := f.premium(account, "personalized wellness insights"); err != nil {
		return "", err
	}
	return "Sleep is trending up.", nil
}

func (f *fakeAssistant) GoalActionPlan(ctx context.Context, account *domain.Account, goalID uuid.UUID) ([]domain.PlanStep, error) {
	if err := f.premium(account, "AI-generated action plans"); err != nil {
		return nil, err
	}
	return []domain.PlanStep{{Week: 1, Action: "Start", Milestone: "Started"}}, nil
}

type fakeEntitlements struct {
	status *domain.QuotaUsage
}

func (f *fakeEntitlements) EvaluateAIQuota(ctx context.Context, accountID string) (domain.AIQuotaDecision, error) {
	return domain.AIQuotaDecision{}, nil
}

func (f *fakeEntitlements) CheckAIQuota(ctx context.Context, account *domain.Account) (domain.AIQuotaDecision, error) {
	return domain.AIQuotaDecision{}, nil
}

func (f *fakeEntitlements) RecordAIUsage(ctx context.Context, accountID string) (int, error) {
	return 0, nil
}

func (f *fakeEntitlements) ReserveAIUsage(ctx context.Context, accountID string) (int, error) {
	return 0, nil
}

func (f *fakeEntitlements) ReleaseAIUsage(ctx context.Context, accountID string) error {
	return nil
}

func (f *fakeEntitlements) CheckFeatureCap(ctx context.Context, account *domain.Account, kind domain.FeatureKind) error {
	return nil
}

func (f *fakeEntitlements) RequirePremium(account *domain.Account, feature string) error {
	return nil
}

func (f *fakeEntitlements) Status(ctx context.Context, accountID string) (*domain.QuotaUsage, error) {
	return f.status, nil
}

// =============================================================================
// Test auth
// =============================================================================

// testAccountHeader selects an account from the fixture map.
const testAccountHeader = "X-Test-Account"

// fakeAuth stands in for the real auth middleware: the header names an
// account in accounts, anything else is a 401.
func fakeAuth(accounts map[string]*domain.Account) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			account, ok := accounts[r.Header.Get(testAccountHeader)]
			if !ok {
				UnauthorizedResponse(w, r, testLogger())
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.SetAccount(r.Context(), account)))
		})
	}
}
