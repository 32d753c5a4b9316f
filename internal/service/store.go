package service

import (
	"context"

	"github.com/DukeRupert/mindpilot/internal/repository"
)

// Store is the persistence surface the services need. *repository.Queries
// satisfies it; tests substitute an in-memory implementation.
type Store interface {
	// Accounts and the daily AI counter
	GetAccount(ctx context.Context, id string) (repository.Account, error)
	UpsertAccount(ctx context.Context, arg repository.UpsertAccountParams) (repository.Account, error)
	RecordAIUsage(ctx context.Context, arg repository.RecordAIUsageParams) (repository.AIUsageRow, error)
	ReserveAIUsage(ctx context.Context, arg repository.ReserveAIUsageParams) (repository.AIUsageRow, error)
	ReleaseAIUsage(ctx context.Context, arg repository.ReleaseAIUsageParams) error
	ResetAIUsage(ctx context.Context, arg repository.ResetAIUsageParams) (repository.Account, error)
	SetAccountPremium(ctx context.Context, arg repository.SetAccountPremiumParams) (repository.Account, error)

	// Tasks
	ListTasks(ctx context.Context, accountID string) ([]repository.Task, error)
	GetTask(ctx context.Context, arg repository.GetTaskParams) (repository.Task, error)
	CreateTask(ctx context.Context, arg repository.CreateTaskParams) (repository.Task, error)
	UpdateTask(ctx context.Context, arg repository.UpdateTaskParams) (repository.Task, error)
	DeleteTask(ctx context.Context, arg repository.DeleteTaskParams) (int64, error)

	// Transactions
	ListTransactions(ctx context.Context, arg repository.ListTransactionsParams) ([]repository.Transaction, error)
	CreateTransaction(ctx context.Context, arg repository.CreateTransactionParams) (repository.Transaction, error)
	DeleteTransaction(ctx context.Context, arg repository.DeleteTransactionParams) (int64, error)

	// Documents
	ListDocuments(ctx context.Context, accountID string) ([]repository.Document, error)
	GetDocument(ctx context.Context, arg repository.GetDocumentParams) (repository.Document, error)
	CountDocuments(ctx context.Context, accountID string) (int64, error)
	CreateDocument(ctx context.Context, arg repository.CreateDocumentParams) (repository.Document, error)
	UpdateDocument(ctx context.Context, arg repository.UpdateDocumentParams) (repository.Document, error)
	DeleteDocument(ctx context.Context, arg repository.DeleteDocumentParams) (int64, error)

	// Wellness
	ListWellnessEntries(ctx context.Context, arg repository.ListWellnessEntriesParams) ([]repository.WellnessEntry, error)
	GetWellnessEntryByDate(ctx context.Context, arg repository.GetWellnessEntryByDateParams) (repository.WellnessEntry, error)
	CreateWellnessEntry(ctx context.Context, arg repository.CreateWellnessEntryParams) (repository.WellnessEntry, error)

	// Goals
	ListGoals(ctx context.Context, accountID string) ([]repository.Goal, error)
	GetGoal(ctx context.Context, arg repository.GetGoalParams) (repository.Goal, error)
	CountActiveGoals(ctx context.Context, accountID string) (int64, error)
	CreateGoal(ctx context.Context, arg repository.CreateGoalParams) (repository.Goal, error)
	UpdateGoal(ctx context.Context, arg repository.UpdateGoalParams) (repository.Goal, error)
	UpdateGoalActionPlan(ctx context.Context, arg repository.UpdateGoalActionPlanParams) (repository.Goal, error)
	DeleteGoal(ctx context.Context, arg repository.DeleteGoalParams) (int64, error)

	// AI chat log
	CreateAIChat(ctx context.Context, arg repository.CreateAIChatParams) (repository.AiChat, error)
	ListAIChats(ctx context.Context, arg repository.ListAIChatsParams) ([]repository.AiChat, error)
}

var _ Store = (*repository.Queries)(nil)
