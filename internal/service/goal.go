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

// GoalService defines operations on an account's goals.
type GoalService interface {
	List(ctx context.Context, accountID string) ([]domain.Goal, error)
	Get(ctx context.Context, id uuid.UUID, accountID string) (*domain.Goal, error)

	// Create stores a new active goal. Free accounts may hold at most
	// domain.FeatureLimits[domain.FeatureActiveGoal] active goals.
	Create(ctx context.Context, account *domain.Account, params domain.CreateGoalParams) (*domain.Goal, error)

	// Update applies a partial update. Moving a paused or completed goal
	// back to active is subject to the same cap as creating one.
	Update(ctx context.Context, account *domain.Account, params domain.UpdateGoalParams) (*domain.Goal, error)

	// SetActionPlan replaces the goal's stored action plan.
	SetActionPlan(ctx context.Context, id uuid.UUID, accountID string, plan []domain.PlanStep) (*domain.Goal, error)

	Delete(ctx context.Context, id uuid.UUID, accountID string) error
}

type goalService struct {
	store        Store
	entitlements EntitlementService
	logger       *slog.Logger
}

// NewGoalService creates a new GoalService.
func NewGoalService(store Store, entitlements EntitlementService, logger *slog.Logger) GoalService {
	return &goalService{
		store:        store,
		entitlements: entitlements,
		logger:       logger,
	}
}

func (s *goalService) List(ctx context.Context, accountID string) ([]domain.Goal, error) {
	const op = "goal.list"

	rows, err := s.store.ListGoals(ctx, accountID)
	if err != nil {
		s.logger.Error("failed to list goals", "error", err, "op", op)
		return nil, domain.Internal(err, op, "failed to list goals")
	}

	goals := make([]domain.Goal, len(rows))
	for i, row := range rows {
		goals[i] = repoGoalToDomain(row)
	}
	return goals, nil
}

func (s *goalService) Get(ctx context.Context, id uuid.UUID, accountID string) (*domain.Goal, error) {
	const op = "goal.get"

	row, err := s.store.GetGoal(ctx, repository.GetGoalParams{ID: id, AccountID: accountID})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "goal", id.String())
		}
		s.logger.Error("failed to get goal", "error", err, "op", op)
		return nil, domain.Internal(err, op, "failed to get goal")
	}

	goal := repoGoalToDomain(row)
	return &goal, nil
}

func (s *goalService) Create(ctx context.Context, account *domain.Account, params domain.CreateGoalParams) (*domain.Goal, error) {
	const op = "goal.create"

	params.AccountID = account.ID
	if err := params.Validate(op); err != nil {
		return nil, err
	}
	if err := s.entitlements.CheckFeatureCap(ctx, account, domain.FeatureActiveGoal); err != nil {
		return nil, err
	}

	row, err := s.store.CreateGoal(ctx, repository.CreateGoalParams{
		AccountID:   params.AccountID,
		Title:       params.Title,
		Description: toNullString(params.Description),
		TargetDate:  domain.NullTime(params.TargetDate),
	})
	if err != nil {
		s.logger.Error("failed to create goal", "error", err, "op", op)
		return nil, domain.Internal(err, op, "failed to create goal")
	}

	goal := repoGoalToDomain(row)
	return &goal, nil
}

func (s *goalService) Update(ctx context.Context, account *domain.Account, params domain.UpdateGoalParams) (*domain.Goal, error) {
	const op = "goal.update"

	params.AccountID = account.ID
	if err := params.Validate(op); err != nil {
		return nil, err
	}

	goal, err := s.Get(ctx, params.ID, account.ID)
	if err != nil {
		return nil, err
	}

	if params.Reactivates(goal) {
		if err := s.entitlements.CheckFeatureCap(ctx, account, domain.FeatureActiveGoal); err != nil {
			return nil, err
		}
	}
	params.Apply(goal)

	row, err := s.store.UpdateGoal(ctx, repository.UpdateGoalParams{
		ID:          goal.ID,
		AccountID:   goal.AccountID,
		Title:       goal.Title,
		Description: toNullString(goal.Description),
		TargetDate:  domain.NullTime(goal.TargetDate),
		Status:      string(goal.Status),
		Progress:    int32(goal.Progress),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "goal", params.ID.String())
		}
		s.logger.Error("failed to update goal", "error", err, "op", op)
		return nil, domain.Internal(err, op, "failed to update goal")
	}

	updated := repoGoalToDomain(row)
	return &updated, nil
}

func (s *goalService) SetActionPlan(ctx context.Context, id uuid.UUID, accountID string, plan []domain.PlanStep) (*domain.Goal, error) {
	const op = "goal.set_action_plan"

	encoded, err := toNullJSON(plan)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to encode action plan")
	}

	row, err := s.store.UpdateGoalActionPlan(ctx, repository.UpdateGoalActionPlanParams{
		ID:         id,
		AccountID:  accountID,
		ActionPlan: encoded,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "goal", id.String())
		}
		s.logger.Error("failed to store action plan", "error", err, "op", op)
		return nil, domain.Internal(err, op, "failed to store action plan")
	}

	goal := repoGoalToDomain(row)
	return &goal, nil
}

func (s *goalService) Delete(ctx context.Context, id uuid.UUID, accountID string) error {
	const op = "goal.delete"

	n, err := s.store.DeleteGoal(ctx, repository.DeleteGoalParams{ID: id, AccountID: accountID})
	if err != nil {
		s.logger.Error("failed to delete goal", "error", err, "op", op)
		return domain.Internal(err, op, "failed to delete goal")
	}
	if n == 0 {
		return domain.NotFound(op, "goal", id.String())
	}
	return nil
}
