package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/DukeRupert/mindpilot/internal/domain"
	"github.com/DukeRupert/mindpilot/internal/repository"
)

// DefaultWellnessListLimit bounds the wellness list endpoint.
const DefaultWellnessListLimit = 30

// WellnessService defines operations on wellness check-ins.
type WellnessService interface {
	List(ctx context.Context, accountID string, limit int) ([]domain.WellnessEntry, error)
	Create(ctx context.Context, params domain.CreateWellnessEntryParams) (*domain.WellnessEntry, error)

	// Today returns today's entry, or nil when there is none.
	Today(ctx context.Context, accountID string) (*domain.WellnessEntry, error)
}

type wellnessService struct {
	store  Store
	clock  domain.Clock
	logger *slog.Logger
}

// NewWellnessService creates a new WellnessService.
func NewWellnessService(store Store, clock domain.Clock, logger *slog.Logger) WellnessService {
	return &wellnessService{
		store:  store,
		clock:  clock,
		logger: logger,
	}
}

func (s *wellnessService) List(ctx context.Context, accountID string, limit int) ([]domain.WellnessEntry, error) {
	const op = "wellness.list"

	if limit <= 0 {
		limit = DefaultWellnessListLimit
	}

	rows, err := s.store.ListWellnessEntries(ctx, repository.ListWellnessEntriesParams{
		AccountID: accountID,
		Limit:     int32(limit),
	})
	if err != nil {
		s.logger.Error("failed to list wellness entries", "error", err, "op", op)
		return nil, domain.Internal(err, op, "failed to list wellness entries")
	}

	entries := make([]domain.WellnessEntry, len(rows))
	for i, row := range rows {
		entries[i] = repoWellnessToDomain(row)
	}
	return entries, nil
}

func (s *wellnessService) Create(ctx context.Context, params domain.CreateWellnessEntryParams) (*domain.WellnessEntry, error) {
	const op = "wellness.create"

	if err := params.Validate(op, s.clock.Today()); err != nil {
		return nil, err
	}

	habits, err := toNullJSON(params.Habits)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to encode habits")
	}

	row, err := s.store.CreateWellnessEntry(ctx, repository.CreateWellnessEntryParams{
		AccountID:   params.AccountID,
		Mood:        toNullInt32(params.Mood),
		EnergyLevel: toNullInt32(params.EnergyLevel),
		SleepHours:  toNullFloat64(params.SleepHours),
		Notes:       toNullString(params.Notes),
		Habits:      habits,
		EntryDate:   params.Date.String(),
	})
	if err != nil {
		s.logger.Error("failed to create wellness entry", "error", err, "op", op)
		return nil, domain.Internal(err, op, "failed to create wellness entry")
	}

	entry := repoWellnessToDomain(row)
	return &entry, nil
}

func (s *wellnessService) Today(ctx context.Context, accountID string) (*domain.WellnessEntry, error) {
	const op = "wellness.today"

	row, err := s.store.GetWellnessEntryByDate(ctx, repository.GetWellnessEntryByDateParams{
		AccountID: accountID,
		EntryDate: s.clock.Today().String(),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		s.logger.Error("failed to get today's wellness entry", "error", err, "op", op)
		return nil, domain.Internal(err, op, "failed to get wellness entry")
	}

	entry := repoWellnessToDomain(row)
	return &entry, nil
}
