// Package handler contains the JSON HTTP handlers for the MindPilot API.
//
// Handlers decode requests, call services with the authenticated account
// and map service errors through ErrorResponse. They never enforce
// entitlements themselves; the services do.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/DukeRupert/mindpilot/internal/domain"
	"github.com/DukeRupert/mindpilot/internal/service"
	"github.com/go-chi/chi/v5"
)

// =============================================================================
// Request Types
// =============================================================================

type createTaskRequest struct {
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	Priority      domain.TaskPriority `json:"priority"`
	DueDate       *time.Time          `json:"dueDate"`
	Category      string              `json:"category"`
	IsAIGenerated bool                `json:"isAiGenerated"`
}

type updateTaskRequest struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	Priority    *domain.TaskPriority `json:"priority"`
	Status      *domain.TaskStatus   `json:"status"`
	DueDate     *time.Time           `json:"dueDate"`
	Category    *string              `json:"category"`
}

// =============================================================================
// Handler Configuration
// =============================================================================

// TaskHandler handles task requests, including AI task suggestions.
type TaskHandler struct {
	tasks     service.TaskService
	assistant service.AssistantService
	logger    *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks service.TaskService, assistant service.AssistantService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		tasks:     tasks,
		assistant: assistant,
		logger:    logger,
	}
}

// RegisterRoutes mounts the task routes.
//
// Routes:
// - GET    /tasks            -> List
// - POST   /tasks            -> Create
// - POST   /tasks/ai-suggest -> Suggest (counts against the daily AI quota)
// - PATCH  /tasks/{id}       -> Update
// - DELETE /tasks/{id}       -> Delete
func (h *TaskHandler) RegisterRoutes(r chi.Router) {
	r.Get("/tasks", h.List)
	r.Post("/tasks", h.Create)
	r.Post("/tasks/ai-suggest", h.Suggest)
	r.Patch("/tasks/{id}", h.Update)
	r.Delete("/tasks/{id}", h.Delete)
}

// List returns the account's tasks, newest first.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	account, ok := requireAccount(w, r, h.logger)
	if !ok {
		return
	}

	tasks, err := h.tasks.List(r.Context(), account.ID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// Create adds a task.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handler.task.create"

	account, ok := requireAccount(w, r, h.logger)
	if !ok {
		return
	}

	var req createTaskRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	task, err := h.tasks.Create(r.Context(), domain.CreateTaskParams{
		AccountID:     account.ID,
		Title:         req.Title,
		Description:   req.Description,
		Priority:      req.Priority,
		DueDate:       req.DueDate,
		Category:      req.Category,
		IsAIGenerated: req.IsAIGenerated,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// Update applies a partial update to a task.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "handler.task.update"

	account, ok := requireAccount(w, r, h.logger)
	if !ok {
		return
	}
	id, err := pathID(r, op, "Task")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req updateTaskRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	task, err := h.tasks.Update(r.Context(), domain.UpdateTaskParams{
		ID:          id,
		AccountID:   account.ID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		DueDate:     req.DueDate,
		Category:    req.Category,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// Delete removes a task.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "handler.task.delete"

	account, ok := requireAccount(w, r, h.logger)
	if !ok {
		return
	}
	id, err := pathID(r, op, "Task")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	if err := h.tasks.Delete(r.Context(), id, account.ID); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, deleted)
}

// Suggest asks the assistant for task suggestions. Free accounts spend one
// AI response from their daily allowance.
func (h *TaskHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	account, ok := requireAccount(w, r, h.logger)
	if !ok {
		return
	}

	suggestions, err := h.assistant.SuggestTasks(r.Context(), account)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestions)
}
