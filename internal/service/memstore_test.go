package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/DukeRupert/mindpilot/internal/domain"
	"github.com/DukeRupert/mindpilot/internal/repository"
	"github.com/google/uuid"
)

// memStore is an in-memory Store that mirrors the SQL semantics the
// services rely on: account scoping, the daily counter update, and
// sql.ErrNoRows for missing rows.
type memStore struct {
	mu sync.Mutex

	accounts     map[string]repository.Account
	tasks        map[uuid.UUID]repository.Task
	transactions map[uuid.UUID]repository.Transaction
	documents    map[uuid.UUID]repository.Document
	wellness     map[uuid.UUID]repository.WellnessEntry
	goals        map[uuid.UUID]repository.Goal
	chats        []repository.AiChat

	// failRecord makes RecordAIUsage return an error.
	failRecord error
	// failCreateChat makes CreateAIChat return an error.
	failCreateChat error
	// failGetAccount makes GetAccount return an error.
	failGetAccount error

	// upserts counts UpsertAccount calls.
	upserts int

	seq int
}

var _ Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		accounts:     map[string]repository.Account{},
		tasks:        map[uuid.UUID]repository.Task{},
		transactions: map[uuid.UUID]repository.Transaction{},
		documents:    map[uuid.UUID]repository.Document{},
		wellness:     map[uuid.UUID]repository.WellnessEntry{},
		goals:        map[uuid.UUID]repository.Goal{},
	}
}

// stamp returns strictly increasing timestamps so ordering is deterministic.
func (m *memStore) stamp() time.Time {
	m.seq++
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(m.seq) * time.Second)
}

func (m *memStore) putAccount(a repository.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[a.ID] = a
}

func (m *memStore) account(id string) repository.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accounts[id]
}

func dateValue(s string) sql.NullTime {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return sql.NullTime{Time: d.Time(time.UTC), Valid: true}
}

// =============================================================================
// Accounts
// =============================================================================

func (m *memStore) GetAccount(_ context.Context, id string) (repository.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGetAccount != nil {
		return repository.Account{}, m.failGetAccount
	}
	a, ok := m.accounts[id]
	if !ok {
		return repository.Account{}, sql.ErrNoRows
	}
	return a, nil
}

func (m *memStore) UpsertAccount(_ context.Context, arg repository.UpsertAccountParams) (repository.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++
	a, ok := m.accounts[arg.ID]
	if !ok {
		a = repository.Account{ID: arg.ID, TrialEndsAt: arg.TrialEndsAt, CreatedAt: m.stamp()}
	}
	if arg.Email.Valid {
		a.Email = arg.Email
	}
	if arg.FirstName.Valid {
		a.FirstName = arg.FirstName
	}
	if arg.LastName.Valid {
		a.LastName = arg.LastName
	}
	if arg.ProfileImageUrl.Valid {
		a.ProfileImageUrl = arg.ProfileImageUrl
	}
	a.UpdatedAt = m.stamp()
	m.accounts[arg.ID] = a
	return a, nil
}

func (m *memStore) applyUsage(id, today string, limit int32) (repository.AIUsageRow, error) {
	a, ok := m.accounts[id]
	if !ok {
		return repository.AIUsageRow{}, sql.ErrNoRows
	}
	t := dateValue(today)
	stale := !a.LastAiResetDate.Valid || a.LastAiResetDate.Time.Before(t.Time)
	if limit > 0 && !stale && a.AiResponsesUsedToday >= limit {
		return repository.AIUsageRow{}, sql.ErrNoRows
	}
	if stale {
		a.AiResponsesUsedToday = 1
		a.LastAiResetDate = t
	} else {
		a.AiResponsesUsedToday++
	}
	m.accounts[id] = a
	return repository.AIUsageRow{AiResponsesUsedToday: a.AiResponsesUsedToday, LastAiResetDate: a.LastAiResetDate}, nil
}

func (m *memStore) RecordAIUsage(_ context.Context, arg repository.RecordAIUsageParams) (repository.AIUsageRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRecord != nil {
		return repository.AIUsageRow{}, m.failRecord
	}
	return m.applyUsage(arg.ID, arg.Today, 0)
}

func (m *memStore) ReserveAIUsage(_ context.Context, arg repository.ReserveAIUsageParams) (repository.AIUsageRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.applyUsage(arg.ID, arg.Today, arg.Limit)
}

func (m *memStore) ReleaseAIUsage(_ context.Context, arg repository.ReleaseAIUsageParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[arg.ID]
	if !ok || !a.LastAiResetDate.Valid || !a.LastAiResetDate.Time.Equal(dateValue(arg.Today).Time) {
		return nil
	}
	if a.AiResponsesUsedToday > 0 {
		a.AiResponsesUsedToday--
	}
	m.accounts[arg.ID] = a
	return nil
}

func (m *memStore) ResetAIUsage(_ context.Context, arg repository.ResetAIUsageParams) (repository.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[arg.ID]
	if !ok {
		return repository.Account{}, sql.ErrNoRows
	}
	t := dateValue(arg.Today)
	a.AiResponsesUsedToday = 0
	if !a.LastAiResetDate.Valid || a.LastAiResetDate.Time.Before(t.Time) {
		a.LastAiResetDate = t
	}
	m.accounts[arg.ID] = a
	return a, nil
}

func (m *memStore) SetAccountPremium(_ context.Context, arg repository.SetAccountPremiumParams) (repository.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[arg.ID]
	if !ok {
		return repository.Account{}, sql.ErrNoRows
	}
	a.IsPremium = arg.IsPremium
	a.PremiumExpiresAt = arg.PremiumExpiresAt
	m.accounts[arg.ID] = a
	return a, nil
}

// =============================================================================
// Tasks
// =============================================================================

func (m *memStore) ListTasks(_ context.Context, accountID string) ([]repository.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []repository.Task
	for _, t := range m.tasks {
		if t.AccountID == accountID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) GetTask(_ context.Context, arg repository.GetTaskParams) (repository.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[arg.ID]
	if !ok || t.AccountID != arg.AccountID {
		return repository.Task{}, sql.ErrNoRows
	}
	return t, nil
}

func (m *memStore) CreateTask(_ context.Context, arg repository.CreateTaskParams) (repository.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.stamp()
	t := repository.Task{
		ID:            uuid.New(),
		AccountID:     arg.AccountID,
		Title:         arg.Title,
		Description:   arg.Description,
		Priority:      arg.Priority,
		Status:        string(domain.TaskStatusPending),
		DueDate:       arg.DueDate,
		Category:      arg.Category,
		IsAiGenerated: arg.IsAiGenerated,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	m.tasks[t.ID] = t
	return t, nil
}

func (m *memStore) UpdateTask(_ context.Context, arg repository.UpdateTaskParams) (repository.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[arg.ID]
	if !ok || t.AccountID != arg.AccountID {
		return repository.Task{}, sql.ErrNoRows
	}
	t.Title = arg.Title
	t.Description = arg.Description
	t.Priority = arg.Priority
	t.Status = arg.Status
	t.DueDate = arg.DueDate
	t.Category = arg.Category
	t.CompletedAt = arg.CompletedAt
	t.UpdatedAt = m.stamp()
	m.tasks[t.ID] = t
	return t, nil
}

func (m *memStore) DeleteTask(_ context.Context, arg repository.DeleteTaskParams) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[arg.ID]
	if !ok || t.AccountID != arg.AccountID {
		return 0, nil
	}
	delete(m.tasks, arg.ID)
	return 1, nil
}

// =============================================================================
// Transactions
// =============================================================================

func (m *memStore) ListTransactions(_ context.Context, arg repository.ListTransactionsParams) ([]repository.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []repository.Transaction
	for _, t := range m.transactions {
		if t.AccountID == arg.AccountID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if int32(len(out)) > arg.Limit {
		out = out[:arg.Limit]
	}
	return out, nil
}

func (m *memStore) CreateTransaction(_ context.Context, arg repository.CreateTransactionParams) (repository.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := repository.Transaction{
		ID:          uuid.New(),
		AccountID:   arg.AccountID,
		Amount:      arg.Amount,
		Type:        arg.Type,
		Category:    arg.Category,
		Description: arg.Description,
		Date:        arg.Date,
		IsRecurring: arg.IsRecurring,
		CreatedAt:   m.stamp(),
	}
	m.transactions[t.ID] = t
	return t, nil
}

func (m *memStore) DeleteTransaction(_ context.Context, arg repository.DeleteTransactionParams) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transactions[arg.ID]
	if !ok || t.AccountID != arg.AccountID {
		return 0, nil
	}
	delete(m.transactions, arg.ID)
	return 1, nil
}

// =============================================================================
// Documents
// =============================================================================

func (m *memStore) ListDocuments(_ context.Context, accountID string) ([]repository.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []repository.Document
	for _, d := range m.documents {
		if d.AccountID == accountID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *memStore) GetDocument(_ context.Context, arg repository.GetDocumentParams) (repository.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.documents[arg.ID]
	if !ok || d.AccountID != arg.AccountID {
		return repository.Document{}, sql.ErrNoRows
	}
	return d, nil
}

func (m *memStore) CountDocuments(_ context.Context, accountID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, d := range m.documents {
		if d.AccountID == accountID {
			n++
		}
	}
	return n, nil
}

func (m *memStore) CreateDocument(_ context.Context, arg repository.CreateDocumentParams) (repository.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.stamp()
	d := repository.Document{
		ID:        uuid.New(),
		AccountID: arg.AccountID,
		Title:     arg.Title,
		Content:   arg.Content,
		Category:  arg.Category,
		Tags:      arg.Tags,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.documents[d.ID] = d
	return d, nil
}

func (m *memStore) UpdateDocument(_ context.Context, arg repository.UpdateDocumentParams) (repository.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.documents[arg.ID]
	if !ok || d.AccountID != arg.AccountID {
		return repository.Document{}, sql.ErrNoRows
	}
	d.Title = arg.Title
	d.Content = arg.Content
	d.Category = arg.Category
	d.Tags = arg.Tags
	d.UpdatedAt = m.stamp()
	m.documents[d.ID] = d
	return d, nil
}

func (m *memStore) DeleteDocument(_ context.Context, arg repository.DeleteDocumentParams) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.documents[arg.ID]
	if !ok || d.AccountID != arg.AccountID {
		return 0, nil
	}
	delete(m.documents, arg.ID)
	return 1, nil
}

// =============================================================================
// Wellness
// =============================================================================

func (m *memStore) ListWellnessEntries(_ context.Context, arg repository.ListWellnessEntriesParams) ([]repository.WellnessEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []repository.WellnessEntry
	for _, w := range m.wellness {
		if w.AccountID == arg.AccountID {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntryDate.After(out[j].EntryDate) })
	if int32(len(out)) > arg.Limit {
		out = out[:arg.Limit]
	}
	return out, nil
}

func (m *memStore) GetWellnessEntryByDate(_ context.Context, arg repository.GetWellnessEntryByDateParams) (repository.WellnessEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	day := dateValue(arg.EntryDate).Time
	for _, w := range m.wellness {
		if w.AccountID == arg.AccountID && w.EntryDate.Equal(day) {
			return w, nil
		}
	}
	return repository.WellnessEntry{}, sql.ErrNoRows
}

func (m *memStore) CreateWellnessEntry(_ context.Context, arg repository.CreateWellnessEntryParams) (repository.WellnessEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w := repository.WellnessEntry{
		ID:          uuid.New(),
		AccountID:   arg.AccountID,
		Mood:        arg.Mood,
		EnergyLevel: arg.EnergyLevel,
		SleepHours:  arg.SleepHours,
		Notes:       arg.Notes,
		Habits:      arg.Habits,
		EntryDate:   dateValue(arg.EntryDate).Time,
		CreatedAt:   m.stamp(),
	}
	m.wellness[w.ID] = w
	return w, nil
}

// =============================================================================
// Goals
// =============================================================================

func (m *memStore) ListGoals(_ context.Context, accountID string) ([]repository.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []repository.Goal
	for _, g := range m.goals {
		if g.AccountID == accountID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) GetGoal(_ context.Context, arg repository.GetGoalParams) (repository.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.goals[arg.ID]
	if !ok || g.AccountID != arg.AccountID {
		return repository.Goal{}, sql.ErrNoRows
	}
	return g, nil
}

func (m *memStore) CountActiveGoals(_ context.Context, accountID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, g := range m.goals {
		if g.AccountID == accountID && g.Status == string(domain.GoalStatusActive) {
			n++
		}
	}
	return n, nil
}

func (m *memStore) CreateGoal(_ context.Context, arg repository.CreateGoalParams) (repository.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.stamp()
	g := repository.Goal{
		ID:          uuid.New(),
		AccountID:   arg.AccountID,
		Title:       arg.Title,
		Description: arg.Description,
		TargetDate:  arg.TargetDate,
		Status:      string(domain.GoalStatusActive),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.goals[g.ID] = g
	return g, nil
}

func (m *memStore) UpdateGoal(_ context.Context, arg repository.UpdateGoalParams) (repository.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.goals[arg.ID]
	if !ok || g.AccountID != arg.AccountID {
		return repository.Goal{}, sql.ErrNoRows
	}
	g.Title = arg.Title
	g.Description = arg.Description
	g.TargetDate = arg.TargetDate
	g.Status = arg.Status
	g.Progress = arg.Progress
	g.UpdatedAt = m.stamp()
	m.goals[g.ID] = g
	return g, nil
}

func (m *memStore) UpdateGoalActionPlan(_ context.Context, arg repository.UpdateGoalActionPlanParams) (repository.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.goals[arg.ID]
	if !ok || g.AccountID != arg.AccountID {
		return repository.Goal{}, sql.ErrNoRows
	}
	g.ActionPlan = arg.ActionPlan
	g.UpdatedAt = m.stamp()
	m.goals[g.ID] = g
	return g, nil
}

func (m *memStore) DeleteGoal(_ context.Context, arg repository.DeleteGoalParams) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.goals[arg.ID]
	if !ok || g.AccountID != arg.AccountID {
		return 0, nil
	}
	delete(m.goals, arg.ID)
	return 1, nil
}

// =============================================================================
// AI chats
// =============================================================================

func (m *memStore) CreateAIChat(_ context.Context, arg repository.CreateAIChatParams) (repository.AiChat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreateChat != nil {
		return repository.AiChat{}, m.failCreateChat
	}
	c := repository.AiChat{
		ID:        uuid.New(),
		AccountID: arg.AccountID,
		Message:   arg.Message,
		Response:  arg.Response,
		Context:   arg.Context,
		CreatedAt: m.stamp(),
	}
	m.chats = append(m.chats, c)
	return c, nil
}

func (m *memStore) ListAIChats(_ context.Context, arg repository.ListAIChatsParams) ([]repository.AiChat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []repository.AiChat
	for i := len(m.chats) - 1; i >= 0; i-- {
		if m.chats[i].AccountID == arg.AccountID {
			out = append(out, m.chats[i])
		}
		if int32(len(out)) == arg.Limit {
			break
		}
	}
	return out, nil
}

var errStoreDown = errors.New("connection refused")
