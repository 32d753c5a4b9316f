package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/DukeRupert/mindpilot/internal/domain"
	"github.com/DukeRupert/mindpilot/internal/service"
	"github.com/go-chi/chi/v5"
)

type createGoalRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	TargetDate  *time.Time `json:"targetDate"`
}

type updateGoalRequest struct {
	Title       *string            `json:"title"`
	Description *string            `json:"description"`
	TargetDate  *time.Time         `json:"targetDate"`
	Status      *domain.GoalStatus `json:"status"`
	Progress    *int               `json:"progress"`
}

// GoalHandler handles goal requests and AI action plans.
type GoalHandler struct {
	goals     service.GoalService
	assistant service.AssistantService
	logger    *slog.Logger
}

// NewGoalHandler creates a new GoalHandler.
func NewGoalHandler(goals service.GoalService, assistant service.AssistantService, logger *slog.Logger) *GoalHandler {
	return &GoalHandler{
		goals:     goals,
		assistant: assistant,
		logger:    logger,
	}
}

// RegisterRoutes mounts the goal routes.
//
// Routes:
// - GET    /goals              -> List
// - POST   /goals              -> Create (active goals capped on the free tier)
// - GET    /goals/{id}         -> Get
// - PATCH  /goals/{id}         -> Update
// - DELETE /goals/{id}         -> Delete
// - POST   /goals/{id}/ai-plan -> Plan (premium only)
func (h *GoalHandler) RegisterRoutes(r chi.Router) {
	r.Get("/goals", h.List)
	r.Post("/goals", h.Create)
	r.Get("/goals/{id}", h.Get)
	r.Patch("/goals/{id}", h.Update)
	r.Delete("/goals/{id}", h.Delete)
	r.Post("/goals/{id}/ai-plan", h.Plan)
}

// List returns the account's goals.
func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	account, ok := requireAccount(w, r, h.logger)
	if !ok {
		return
	}

	goals, err := h.goals.List(r.Context(), account.ID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

// Get returns one goal.
func (h *GoalHandler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "handler.goal.get"

	account, ok := requireAccount(w, r, h.logger)
	if !ok {
		return
	}
	id, err := pathID(r, op, "Goal")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	goal, err := h.goals.Get(r.Context(), id, account.ID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

// Create adds an active goal.
func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handler.goal.create"

	account, ok := requireAccount(w, r, h.logger)
	if !ok {
		return
	}

	var req createGoalRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	goal, err := h.goals.Create(r.Context(), account, domain.CreateGoalParams{
		Title:       req.Title,
		Description: req.Description,
		TargetDate:  req.TargetDate,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, goal)
}

// Update applies a partial update. Moving a goal back to active is subject
// to the same cap as creating one.
func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "handler.goal.update"

	account, ok := requireAccount(w, r, h.logger)
	if !ok {
		return
	}
	id, err := pathID(r, op, "Goal")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req updateGoalRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	goal, err := h.goals.Update(r.Context(), account, domain.UpdateGoalParams{
		ID:          id,
		AccountID:   account.ID,
		Title:       req.Title,
		Description: req.Description,
		TargetDate:  req.TargetDate,
		Status:      req.Status,
		Progress:    req.Progress,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

// Delete removes a goal.
func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "handler.goal.delete"

	account, ok := requireAccount(w, r, h.logger)
	if !ok {
		return
	}
	id, err := pathID(r, op, "Goal")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	if err := h.goals.Delete(r.Context(), id, account.ID); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, deleted)
}

// Plan generates and stores an AI action plan for the goal. Premium only.
func (h *GoalHandler) Plan(w http.ResponseWriter, r *http.Request) {
	const op = "handler.goal.plan"

	account, ok := requireAccount(w, r, h.logger)
	if !ok {
		return
	}
	id, err := pathID(r, op, "Goal")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	plan, err := h.assistant.GoalActionPlan(r.Context(), account, id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]domain.PlanStep{"plan": plan})
}
