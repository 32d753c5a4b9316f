package handler

import (
	"log/slog"
	"net/http"

	"github.com/DukeRupert/mindpilot/internal/domain"
	"github.com/DukeRupert/mindpilot/internal/service"
	"github.com/go-chi/chi/v5"
)

type createWellnessRequest struct {
	Mood        *int            `json:"mood"`
	EnergyLevel *int            `json:"energyLevel"`
	SleepHours  *float64        `json:"sleepHours"`
	Notes       string          `json:"notes"`
	Habits      map[string]bool `json:"habits"`
	Date        *domain.Date    `json:"date"`
}

// WellnessHandler handles wellness journal requests and insights.
type WellnessHandler struct {
	wellness  service.WellnessService
	assistant service.AssistantService
	logger    *slog.Logger
}

// NewWellnessHandler creates a new WellnessHandler.
func NewWellnessHandler(wellness service.WellnessService, assistant service.AssistantService, logger *slog.Logger) *WellnessHandler {
	return &WellnessHandler{
		wellness:  wellness,
		assistant: assistant,
		logger:    logger,
	}
}

// RegisterRoutes mounts the wellness routes.
//
// Routes:
// - GET  /wellness            -> List (?limit=)
// - POST /wellness            -> Create
// - GET  /wellness/today      -> Today (null when nothing logged yet)
// - GET  /wellness/ai-insight -> Insight (premium only)
func (h *WellnessHandler) RegisterRoutes(r chi.Router) {
	r.Get("/wellness", h.List)
	r.Post("/wellness", h.Create)
	r.Get("/wellness/today", h.Today)
	r.Get("/wellness/ai-insight", h.Insight)
}

// List returns recent entries, newest date first.
func (h *WellnessHandler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handler.wellness.list"

	account, ok := requireAccount(w, r, h.logger)
	if !ok {
		return
	}
	limit, err := queryLimit(r, op)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	entries, err := h.wellness.List(r.Context(), account.ID, limit)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// Create logs a wellness entry.
func (h *WellnessHandler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handler.wellness.create"

	account, ok := requireAccount(w, r, h.logger)
	if !ok {
		return
	}

	var req createWellnessRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	params := domain.CreateWellnessEntryParams{
		AccountID:   account.ID,
		Mood:        req.Mood,
		EnergyLevel: req.EnergyLevel,
		SleepHours:  req.SleepHours,
		Notes:       req.Notes,
		Habits:      req.Habits,
	}
	if req.Date != nil {
		params.Date = *req.Date
	}

	entry, err := h.wellness.Create(r.Context(), params)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// Today returns today's entry, or null.
func (h *WellnessHandler) Today(w http.ResponseWriter, r *http.Request) {
	account, ok := requireAccount(w, r, h.logger)
	if !ok {
		return
	}

	entry, err := h.wellness.Today(r.Context(), account.ID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Insight returns a personalized wellness insight. Premium only.
func (h *WellnessHandler) Insight(w http.ResponseWriter, r *http.Request) {
	account, ok := requireAccount(w, r, h.logger)
	if !ok {
		return
	}

	insight, err := h.assistant.WellnessInsight(r.Context(), account)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"insight": insight})
}
