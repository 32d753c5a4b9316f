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

// TaskService defines operations on an account's tasks.
type TaskService interface {
	List(ctx context.Context, accountID string) ([]domain.Task, error)
	Create(ctx context.Context, params domain.CreateTaskParams) (*domain.Task, error)
	Update(ctx context.Context, params domain.UpdateTaskParams) (*domain.Task, error)
	Delete(ctx context.Context, id uuid.UUID, accountID string) error
}

type taskService struct {
	store  Store
	clock  domain.Clock
	logger *slog.Logger
}

// NewTaskService creates a new TaskService.
func NewTaskService(store Store, clock domain.Clock, logger *slog.Logger) TaskService {
	return &taskService{
		store:  store,
		clock:  clock,
		logger: logger,
	}
}

func (s *taskService) List(ctx context.Context, accountID string) ([]domain.Task, error) {
	const op = "task.list"

	rows, err := s.store.ListTasks(ctx, accountID)
	if err != nil {
		s.logger.Error("failed to list tasks", "error", err, "op", op)
		return nil, domain.Internal(err, op, "failed to list tasks")
	}

	tasks := make([]domain.Task, len(rows))
	for i, row := range rows {
		tasks[i] = repoTaskToDomain(row)
	}
	return tasks, nil
}

func (s *taskService) Create(ctx context.Context, params domain.CreateTaskParams) (*domain.Task, error) {
	const op = "task.create"

	if err := params.Validate(op); err != nil {
		return nil, err
	}

	row, err := s.store.CreateTask(ctx, repository.CreateTaskParams{
		AccountID:     params.AccountID,
		Title:         params.Title,
		Description:   toNullString(params.Description),
		Priority:      string(params.Priority),
		DueDate:       domain.NullTime(params.DueDate),
		Category:      toNullString(params.Category),
		IsAiGenerated: params.IsAIGenerated,
	})
	if err != nil {
		s.logger.Error("failed to create task", "error", err, "op", op)
		return nil, domain.Internal(err, op, "failed to create task")
	}

	task := repoTaskToDomain(row)
	return &task, nil
}

// Update applies a partial update. Moving a task to completed stamps
// completed_at; moving it out clears it.
func (s *taskService) Update(ctx context.Context, params domain.UpdateTaskParams) (*domain.Task, error) {
	const op = "task.update"

	if err := params.Validate(op); err != nil {
		return nil, err
	}

	existing, err := s.store.GetTask(ctx, repository.GetTaskParams{ID: params.ID, AccountID: params.AccountID})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "task", params.ID.String())
		}
		s.logger.Error("failed to get task", "error", err, "op", op)
		return nil, domain.Internal(err, op, "failed to get task")
	}

	task := repoTaskToDomain(existing)
	params.Apply(&task, s.clock.Time())

	row, err := s.store.UpdateTask(ctx, repository.UpdateTaskParams{
		ID:          task.ID,
		AccountID:   task.AccountID,
		Title:       task.Title,
		Description: toNullString(task.Description),
		Priority:    string(task.Priority),
		Status:      string(task.Status),
		DueDate:     domain.NullTime(task.DueDate),
		Category:    toNullString(task.Category),
		CompletedAt: domain.NullTime(task.CompletedAt),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "task", params.ID.String())
		}
		s.logger.Error("failed to update task", "error", err, "op", op)
		return nil, domain.Internal(err, op, "failed to update task")
	}

	updated := repoTaskToDomain(row)
	return &updated, nil
}

func (s *taskService) Delete(ctx context.Context, id uuid.UUID, accountID string) error {
	const op = "task.delete"

	n, err := s.store.DeleteTask(ctx, repository.DeleteTaskParams{ID: id, AccountID: accountID})
	if err != nil {
		s.logger.Error("failed to delete task", "error", err, "op", op)
		return domain.Internal(err, op, "failed to delete task")
	}
	if n == 0 {
		return domain.NotFound(op, "task", id.String())
	}
	return nil
}
