// Package service contains the business logic layer.
//
// This file implements the entitlement service: the daily AI allowance with
// its lazily reset counter, the free-tier creation caps, and the premium-only
// feature gates.
package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/DukeRupert/mindpilot/internal/domain"
	"github.com/DukeRupert/mindpilot/internal/metrics"
	"github.com/DukeRupert/mindpilot/internal/repository"
)

// =============================================================================
// Interface Definition
// =============================================================================

// EntitlementService decides what an account may do under its tier.
type EntitlementService interface {
	// EvaluateAIQuota loads the account and decides whether it may receive
	// another AI response today. It has no side effects.
	EvaluateAIQuota(ctx context.Context, accountID string) (domain.AIQuotaDecision, error)

	// CheckAIQuota evaluates an already loaded account and returns a
	// QuotaExceeded error when the allowance is exhausted.
	CheckAIQuota(ctx context.Context, account *domain.Account) (domain.AIQuotaDecision, error)

	// RecordAIUsage counts one granted AI response against today and returns
	// the new count. The day rollover and increment happen in one statement.
	RecordAIUsage(ctx context.Context, accountID string) (int, error)

	// ReserveAIUsage increments the counter only while it is under the daily
	// limit. Returns QuotaExceeded when nothing was reserved.
	ReserveAIUsage(ctx context.Context, accountID string) (int, error)

	// ReleaseAIUsage gives back a reservation made earlier today.
	ReleaseAIUsage(ctx context.Context, accountID string) error

	// CheckFeatureCap returns FeatureCapExceeded when a free account already
	// holds the maximum number of resources of the given kind.
	CheckFeatureCap(ctx context.Context, account *domain.Account, kind domain.FeatureKind) error

	// RequirePremium returns PremiumRequired unless the account has premium access.
	RequirePremium(account *domain.Account, feature string) error

	// Status reports the entitlement summary for the subscription endpoint.
	Status(ctx context.Context, accountID string) (*domain.QuotaUsage, error)
}

// =============================================================================
// Implementation
// =============================================================================

type entitlementService struct {
	store  Store
	clock  domain.Clock
	logger *slog.Logger
}

// NewEntitlementService creates a new EntitlementService.
func NewEntitlementService(store Store, clock domain.Clock, logger *slog.Logger) EntitlementService {
	return &entitlementService{
		store:  store,
		clock:  clock,
		logger: logger,
	}
}

func (s *entitlementService) loadAccount(ctx context.Context, op, accountID string) (*domain.Account, error) {
	row, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "account", accountID)
		}
		s.logger.Error("failed to load account", "error", err, "op", op, "account_id", accountID)
		return nil, domain.Internal(err, op, "failed to load account")
	}
	return repoAccountToDomain(row), nil
}

// EvaluateAIQuota loads the account and applies the daily allowance policy.
func (s *entitlementService) EvaluateAIQuota(ctx context.Context, accountID string) (domain.AIQuotaDecision, error) {
	const op = "entitlement.evaluate_ai_quota"

	account, err := s.loadAccount(ctx, op, accountID)
	if err != nil {
		return domain.AIQuotaDecision{}, err
	}
	return s.evaluate(account), nil
}

func (s *entitlementService) evaluate(account *domain.Account) domain.AIQuotaDecision {
	now := s.clock.Time()
	return domain.EvaluateAIQuota(account.AIUsage(), account.HasPremium(now), domain.DateOf(now))
}

// CheckAIQuota returns QuotaExceeded when a free account has used today's allowance.
func (s *entitlementService) CheckAIQuota(ctx context.Context, account *domain.Account) (domain.AIQuotaDecision, error) {
	const op = "entitlement.check_ai_quota"

	decision := s.evaluate(account)
	if !decision.Allowed {
		metrics.AIQuotaDenials.WithLabelValues("ai_response").Inc()
		s.logger.Info("AI quota exceeded",
			"account_id", account.ID,
			"used", decision.Used,
			"limit", domain.DailyAILimit,
		)
		return decision, domain.QuotaExceeded(op, decision.Used, domain.DailyAILimit)
	}
	return decision, nil
}

// RecordAIUsage increments today's counter, resetting it first on a new day.
func (s *entitlementService) RecordAIUsage(ctx context.Context, accountID string) (int, error) {
	const op = "entitlement.record_ai_usage"

	row, err := s.store.RecordAIUsage(ctx, repository.RecordAIUsageParams{
		ID:    accountID,
		Today: s.clock.Today().String(),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.NotFound(op, "account", accountID)
		}
		metrics.AIUsageRecordFailures.Inc()
		s.logger.Error("failed to record AI usage", "error", err, "op", op, "account_id", accountID)
		return 0, domain.Internal(err, op, "failed to record AI usage")
	}

	metrics.AIUsageRecorded.Inc()
	return int(row.AiResponsesUsedToday), nil
}

// ReserveAIUsage increments today's counter only if it stays within the limit.
func (s *entitlementService) ReserveAIUsage(ctx context.Context, accountID string) (int, error) {
	const op = "entitlement.reserve_ai_usage"

	row, err := s.store.ReserveAIUsage(ctx, repository.ReserveAIUsageParams{
		ID:    accountID,
		Today: s.clock.Today().String(),
		Limit: domain.DailyAILimit,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Either the account is gone or the limit was reached; tell them apart.
			account, loadErr := s.loadAccount(ctx, op, accountID)
			if loadErr != nil {
				return 0, loadErr
			}
			used := account.AIUsage().Used(s.clock.Today())
			metrics.AIQuotaDenials.WithLabelValues("ai_response").Inc()
			s.logger.Info("AI quota exceeded",
				"account_id", accountID,
				"used", used,
				"limit", domain.DailyAILimit,
			)
			return used, domain.QuotaExceeded(op, used, domain.DailyAILimit)
		}
		metrics.AIUsageRecordFailures.Inc()
		s.logger.Error("failed to reserve AI usage", "error", err, "op", op, "account_id", accountID)
		return 0, domain.Internal(err, op, "failed to reserve AI usage")
	}

	metrics.AIUsageRecorded.Inc()
	return int(row.AiResponsesUsedToday), nil
}

// ReleaseAIUsage decrements today's counter, never below zero.
func (s *entitlementService) ReleaseAIUsage(ctx context.Context, accountID string) error {
	const op = "entitlement.release_ai_usage"

	err := s.store.ReleaseAIUsage(ctx, repository.ReleaseAIUsageParams{
		ID:    accountID,
		Today: s.clock.Today().String(),
	})
	if err != nil {
		s.logger.Error("failed to release AI usage", "error", err, "op", op, "account_id", accountID)
		return domain.Internal(err, op, "failed to release AI usage")
	}
	return nil
}

// CheckFeatureCap counts the account's resources of kind and applies the cap.
// Premium accounts are never counted.
func (s *entitlementService) CheckFeatureCap(ctx context.Context, account *domain.Account, kind domain.FeatureKind) error {
	const op = "entitlement.check_feature_cap"

	if account.HasPremium(s.clock.Time()) || !kind.Valid() {
		return nil
	}

	var (
		count int64
		err   error
	)
	switch kind {
	case domain.FeatureDocument:
		count, err = s.store.CountDocuments(ctx, account.ID)
	case domain.FeatureActiveGoal:
		count, err = s.store.CountActiveGoals(ctx, account.ID)
	}
	if err != nil {
		s.logger.Error("failed to count resources", "error", err, "op", op, "kind", kind, "account_id", account.ID)
		return domain.Internal(err, op, "failed to count resources")
	}

	if domain.EvaluateFeatureCap(kind, int(count), false) {
		return nil
	}

	metrics.FeatureCapDenials.WithLabelValues(string(kind)).Inc()
	s.logger.Info("feature cap reached",
		"account_id", account.ID,
		"kind", kind,
		"used", count,
		"limit", kind.Limit(),
	)
	return domain.FeatureCapExceeded(op, kind, int(count), kind.Limit())
}

// RequirePremium gates premium-only features.
func (s *entitlementService) RequirePremium(account *domain.Account, feature string) error {
	const op = "entitlement.require_premium"

	if account.HasPremium(s.clock.Time()) {
		return nil
	}
	metrics.PremiumGateDenials.WithLabelValues(feature).Inc()
	s.logger.Info("premium feature denied", "account_id", account.ID, "feature", feature)
	return domain.PremiumRequired(op, feature)
}

// Status reports premium state and today's AI usage. A counter left over
// from an earlier day is reported as zero.
func (s *entitlementService) Status(ctx context.Context, accountID string) (*domain.QuotaUsage, error) {
	const op = "entitlement.status"

	account, err := s.loadAccount(ctx, op, accountID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Time()
	premium := account.HasPremium(now)
	decision := domain.EvaluateAIQuota(account.AIUsage(), premium, domain.DateOf(now))

	limit := domain.Limited(domain.DailyAILimit)
	if premium {
		limit = domain.Unlimited()
	}

	return &domain.QuotaUsage{
		IsPremium:            premium,
		InTrial:              account.InTrial(now),
		ExpiresAt:            account.PremiumExpiresAt,
		TrialEndsAt:          account.TrialEndsAt,
		AIResponsesUsedToday: decision.Used,
		AILimit:              limit,
		AIRemaining:          decision.Remaining,
	}, nil
}
