package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/DukeRupert/mindpilot/internal/domain"
	"github.com/DukeRupert/mindpilot/internal/repository"
	"github.com/google/uuid"
)

// DocumentService defines operations on an account's documents.
type DocumentService interface {
	List(ctx context.Context, accountID string) ([]domain.Document, error)

	// Create stores a new document. Free accounts are capped at
	// domain.FeatureLimits[domain.FeatureDocument] documents in total.
	Create(ctx context.Context, account *domain.Account, params domain.CreateDocumentParams) (*domain.Document, error)

	Update(ctx context.Context, params domain.UpdateDocumentParams) (*domain.Document, error)
	Delete(ctx context.Context, id uuid.UUID, accountID string) error
}

type documentService struct {
	store        Store
	entitlements EntitlementService
	logger       *slog.Logger
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(store Store, entitlements EntitlementService, logger *slog.Logger) DocumentService {
	return &documentService{
		store:        store,
		entitlements: entitlements,
		logger:       logger,
	}
}

func (s *documentService) List(ctx context.Context, accountID string) ([]domain.Document, error) {
	const op = "document.list"

	rows, err := s.store.ListDocuments(ctx, accountID)
	if err != nil {
		s.logger.Error("failed to list documents", "error", err, "op", op)
		return nil, domain.Internal(err, op, "failed to list documents")
	}

	docs := make([]domain.Document, len(rows))
	for i, row := range rows {
		docs[i] = repoDocumentToDomain(row)
	}
	return docs, nil
}

func (s *documentService) Create(ctx context.Context, account *domain.Account, params domain.CreateDocumentParams) (*domain.Document, error) {
	const op = "document.create"

	params.AccountID = account.ID
	if err := params.Validate(op); err != nil {
		return nil, err
	}
	if err := s.entitlements.CheckFeatureCap(ctx, account, domain.FeatureDocument); err != nil {
		return nil, err
	}

	tags, err := toNullJSON(params.Tags)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to encode tags")
	}

	row, err := s.store.CreateDocument(ctx, repository.CreateDocumentParams{
		AccountID: params.AccountID,
		Title:     params.Title,
		Content:   toNullString(params.Content),
		Category:  toNullString(params.Category),
		Tags:      tags,
	})
	if err != nil {
		s.logger.Error("failed to create document", "error", err, "op", op)
		return nil, domain.Internal(err, op, "failed to create document")
	}

	doc := repoDocumentToDomain(row)
	return &doc, nil
}

func (s *documentService) Update(ctx context.Context, params domain.UpdateDocumentParams) (*domain.Document, error) {
	const op = "document.update"

	if err := params.Validate(op); err != nil {
		return nil, err
	}

	existing, err := s.store.GetDocument(ctx, repository.GetDocumentParams{ID: params.ID, AccountID: params.AccountID})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "document", params.ID.String())
		}
		s.logger.Error("failed to get document", "error", err, "op", op)
		return nil, domain.Internal(err, op, "failed to get document")
	}

	doc := repoDocumentToDomain(existing)
	params.Apply(&doc)

	tags, err := toNullJSON(doc.Tags)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to encode tags")
	}

	row, err := s.store.UpdateDocument(ctx, repository.UpdateDocumentParams{
		ID:        doc.ID,
		AccountID: doc.AccountID,
		Title:     doc.Title,
		Content:   toNullString(doc.Content),
		Category:  toNullString(doc.Category),
		Tags:      tags,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "document", params.ID.String())
		}
		s.logger.Error("failed to update document", "error", err, "op", op)
		return nil, domain.Internal(err, op, "failed to update document")
	}

	updated := repoDocumentToDomain(row)
	return &updated, nil
}

func (s *documentService) Delete(ctx context.Context, id uuid.UUID, accountID string) error {
	const op = "document.delete"

	n, err := s.store.DeleteDocument(ctx, repository.DeleteDocumentParams{ID: id, AccountID: accountID})
	if err != nil {
		s.logger.Error("failed to delete document", "error", err, "op", op)
		return domain.Internal(err, op, "failed to delete document")
	}
	if n == 0 {
		return domain.NotFound(op, "document", id.String())
	}
	return nil
}
