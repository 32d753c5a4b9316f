package handler

import (
	"log/slog"
	"net/http"

	"github.com/DukeRupert/mindpilot/internal/service"
	"github.com/go-chi/chi/v5"
)

type chatRequest struct {
	Message string `json:"message"`
	Context string `json:"context"`
}

// AssistantHandler handles the AI chat routes.
type AssistantHandler struct {
	assistant service.AssistantService
	logger    *slog.Logger
}

// NewAssistantHandler creates a new AssistantHandler.
func NewAssistantHandler(assistant service.AssistantService, logger *slog.Logger) *AssistantHandler {
	return &AssistantHandler{
		assistant: assistant,
		logger:    logger,
	}
}

// RegisterRoutes mounts the AI chat routes.
//
// Routes:
// - POST /ai/chat  -> Chat (counts against the daily AI quota)
// - GET  /ai/chats -> History (?limit=, at most 100)
func (h *AssistantHandler) RegisterRoutes(r chi.Router) {
	r.Post("/ai/chat", h.Chat)
	r.Get("/ai/chats", h.History)
}

// Chat answers a message. The response carries the caller's remaining
// allowance: a number for free accounts, null for unlimited ones.
func (h *AssistantHandler) Chat(w http.ResponseWriter, r *http.Request) {
	const op = "handler.assistant.chat"

	account, ok := requireAccount(w, r, h.logger)
	if !ok {
		return
	}

	var req chatRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	reply, err := h.assistant.Chat(r.Context(), account, req.Message, req.Context)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

// History lists past chats, newest first.
func (h *AssistantHandler) History(w http.ResponseWriter, r *http.Request) {
	const op = "handler.assistant.history"

	account, ok := requireAccount(w, r, h.logger)
	if !ok {
		return
	}
	limit, err := queryLimit(r, op)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	chats, err := h.assistant.ChatHistory(r.Context(), account.ID, limit)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, chats)
}
