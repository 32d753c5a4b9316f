package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/DukeRupert/mindpilot/internal/domain"
	"github.com/DukeRupert/mindpilot/internal/repository"
)

// =============================================================================
// Interface Definition
// =============================================================================

// AccountService manages accounts and the premium flag.
type AccountService interface {
	// Upsert creates the account on first sign-in and refreshes its identity
	// fields when the claims change; otherwise it only reads. A new account
	// starts its trial when trials are enabled.
	Upsert(ctx context.Context, identity domain.Identity) (*domain.Account, error)

	// Get retrieves an account by id.
	Get(ctx context.Context, id string) (*domain.Account, error)

	// GrantPremium marks the account premium until the given time, or
	// indefinitely when until is nil.
	GrantPremium(ctx context.Context, id string, until *time.Time) (*domain.Account, error)

	// RevokePremium clears the premium flag and its expiry.
	RevokePremium(ctx context.Context, id string) (*domain.Account, error)

	// ResetUsage zeroes the daily AI counter.
	ResetUsage(ctx context.Context, id string) (*domain.Account, error)
}

// =============================================================================
// Implementation
// =============================================================================

type accountService struct {
	store         Store
	clock         domain.Clock
	trialDuration time.Duration
	logger        *slog.Logger
}

// NewAccountService creates a new AccountService. A zero trialDuration
// disables trials.
func NewAccountService(store Store, clock domain.Clock, trialDuration time.Duration, logger *slog.Logger) AccountService {
	return &accountService{
		store:         store,
		clock:         clock,
		trialDuration: trialDuration,
		logger:        logger,
	}
}

// Upsert loads the account for the identity. It writes only when the
// account is new or a non-empty claim differs from what is stored.
func (s *accountService) Upsert(ctx context.Context, identity domain.Identity) (*domain.Account, error) {
	const op = "account.upsert"

	subject := strings.TrimSpace(identity.Subject)
	if subject == "" {
		return nil, domain.Unauthorized(op, "missing account subject")
	}

	existing, err := s.store.GetAccount(ctx, subject)
	switch {
	case err == nil:
		if !claimsChanged(existing, identity) {
			return repoAccountToDomain(existing), nil
		}
	case !errors.Is(err, sql.ErrNoRows):
		s.logger.Error("failed to load account", "error", err, "op", op, "account_id", subject)
		return nil, domain.Internal(err, op, "failed to load account")
	}

	var trialEndsAt sql.NullTime
	if s.trialDuration > 0 {
		trialEndsAt = sql.NullTime{Time: s.clock.Time().Add(s.trialDuration), Valid: true}
	}

	row, err := s.store.UpsertAccount(ctx, repository.UpsertAccountParams{
		ID:              subject,
		Email:           toNullString(strings.ToLower(identity.Email)),
		FirstName:       toNullString(identity.FirstName),
		LastName:        toNullString(identity.LastName),
		ProfileImageUrl: toNullString(identity.ProfileImageURL),
		TrialEndsAt:     trialEndsAt,
	})
	if err != nil {
		s.logger.Error("failed to upsert account", "error", err, "op", op, "account_id", subject)
		return nil, domain.Internal(err, op, "failed to save account")
	}
	return repoAccountToDomain(row), nil
}

// claimsChanged reports whether saving identity would change a. Empty
// claims never overwrite stored values.
func claimsChanged(a repository.Account, identity domain.Identity) bool {
	differs := func(stored sql.NullString, claim string) bool {
		c := toNullString(claim)
		return c.Valid && (!stored.Valid || stored.String != c.String)
	}
	return differs(a.Email, strings.ToLower(identity.Email)) ||
		differs(a.FirstName, identity.FirstName) ||
		differs(a.LastName, identity.LastName) ||
		differs(a.ProfileImageUrl, identity.ProfileImageURL)
}

// Get retrieves an account by id.
func (s *accountService) Get(ctx context.Context, id string) (*domain.Account, error) {
	const op = "account.get"

	row, err := s.store.GetAccount(ctx, id)
	if err != nil {
		return nil, s.accountError(err, op, id, "failed to get account")
	}
	return repoAccountToDomain(row), nil
}

// GrantPremium sets the premium flag with an optional expiry.
func (s *accountService) GrantPremium(ctx context.Context, id string, until *time.Time) (*domain.Account, error) {
	const op = "account.grant_premium"

	if until != nil && !until.After(s.clock.Time()) {
		return nil, domain.Invalid(op, "Premium expiry must be in the future")
	}

	row, err := s.store.SetAccountPremium(ctx, repository.SetAccountPremiumParams{
		ID:               id,
		IsPremium:        true,
		PremiumExpiresAt: domain.NullTime(until),
	})
	if err != nil {
		return nil, s.accountError(err, op, id, "failed to grant premium")
	}

	s.logger.Info("premium granted", "account_id", id, "until", until)
	return repoAccountToDomain(row), nil
}

// RevokePremium clears the premium flag.
func (s *accountService) RevokePremium(ctx context.Context, id string) (*domain.Account, error) {
	const op = "account.revoke_premium"

	row, err := s.store.SetAccountPremium(ctx, repository.SetAccountPremiumParams{
		ID:        id,
		IsPremium: false,
	})
	if err != nil {
		return nil, s.accountError(err, op, id, "failed to revoke premium")
	}

	s.logger.Info("premium revoked", "account_id", id)
	return repoAccountToDomain(row), nil
}

// ResetUsage zeroes the daily AI counter.
func (s *accountService) ResetUsage(ctx context.Context, id string) (*domain.Account, error) {
	const op = "account.reset_usage"

	row, err := s.store.ResetAIUsage(ctx, repository.ResetAIUsageParams{
		ID:    id,
		Today: s.clock.Today().String(),
	})
	if err != nil {
		return nil, s.accountError(err, op, id, "failed to reset AI usage")
	}

	s.logger.Info("AI usage reset", "account_id", id)
	return repoAccountToDomain(row), nil
}

func (s *accountService) accountError(err error, op, id, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFound(op, "account", id)
	}
	s.logger.Error(message, "error", err, "op", op, "account_id", id)
	return domain.Internal(err, op, message)
}
