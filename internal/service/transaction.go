package service

import (
	"context"
	"log/slog"

	"github.com/DukeRupert/mindpilot/internal/domain"
	"github.com/DukeRupert/mindpilot/internal/repository"
	"github.com/google/uuid"
)

// DefaultTransactionListLimit bounds the transaction list endpoint.
const DefaultTransactionListLimit = 100

// TransactionService defines operations on an account's transactions.
type TransactionService interface {
	List(ctx context.Context, accountID string, limit int) ([]domain.Transaction, error)
	Create(ctx context.Context, params domain.CreateTransactionParams) (*domain.Transaction, error)
	Delete(ctx context.Context, id uuid.UUID, accountID string) error
}

type transactionService struct {
	store  Store
	clock  domain.Clock
	logger *slog.Logger
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(store Store, clock domain.Clock, logger *slog.Logger) TransactionService {
	return &transactionService{
		store:  store,
		clock:  clock,
		logger: logger,
	}
}

// List returns the newest transactions first.
func (s *transactionService) List(ctx context.Context, accountID string, limit int) ([]domain.Transaction, error) {
	const op = "transaction.list"

	if limit <= 0 {
		limit = DefaultTransactionListLimit
	}

	rows, err := s.store.ListTransactions(ctx, repository.ListTransactionsParams{
		AccountID: accountID,
		Limit:     int32(limit),
	})
	if err != nil {
		s.logger.Error("failed to list transactions", "error", err, "op", op)
		return nil, domain.Internal(err, op, "failed to list transactions")
	}

	txns := make([]domain.Transaction, len(rows))
	for i, row := range rows {
		txns[i] = repoTransactionToDomain(row)
	}
	return txns, nil
}

func (s *transactionService) Create(ctx context.Context, params domain.CreateTransactionParams) (*domain.Transaction, error) {
	const op = "transaction.create"

	if err := params.Validate(op, s.clock.Time()); err != nil {
		return nil, err
	}

	row, err := s.store.CreateTransaction(ctx, repository.CreateTransactionParams{
		AccountID:   params.AccountID,
		Amount:      params.Amount,
		Type:        string(params.Type),
		Category:    params.Category,
		Description: toNullString(params.Description),
		Date:        params.Date,
		IsRecurring: params.IsRecurring,
	})
	if err != nil {
		s.logger.Error("failed to create transaction", "error", err, "op", op)
		return nil, domain.Internal(err, op, "failed to create transaction")
	}

	txn := repoTransactionToDomain(row)
	return &txn, nil
}

func (s *transactionService) Delete(ctx context.Context, id uuid.UUID, accountID string) error {
	const op = "transaction.delete"

	n, err := s.store.DeleteTransaction(ctx, repository.DeleteTransactionParams{ID: id, AccountID: accountID})
	if err != nil {
		s.logger.Error("failed to delete transaction", "error", err, "op", op)
		return domain.Internal(err, op, "failed to delete transaction")
	}
	if n == 0 {
		return domain.NotFound(op, "transaction", id.String())
	}
	return nil
}
