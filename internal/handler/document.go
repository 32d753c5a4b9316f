package handler

import (
	"log/slog"
	"net/http"

	"github.com/DukeRupert/mindpilot/internal/domain"
	"github.com/DukeRupert/mindpilot/internal/service"
	"github.com/go-chi/chi/v5"
)

type createDocumentRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

type updateDocumentRequest struct {
	Title    *string  `json:"title"`
	Content  *string  `json:"content"`
	Category *string  `json:"category"`
	Tags     []string `json:"tags"`
}

// DocumentHandler handles document requests.
type DocumentHandler struct {
	documents service.DocumentService
	logger    *slog.Logger
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(documents service.DocumentService, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		documents: documents,
		logger:    logger,
	}
}

// RegisterRoutes mounts the document routes.
func (h *DocumentHandler) RegisterRoutes(r chi.Router) {
	r.Get("/documents", h.List)
	r.Post("/documents", h.Create)
	r.Patch("/documents/{id}", h.Update)
	r.Delete("/documents/{id}", h.Delete)
}

// List returns the account's documents.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	account, ok := requireAccount(w, r, h.logger)
	if !ok {
		return
	}

	documents, err := h.documents.List(r.Context(), account.ID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, documents)
}

// Create adds a document. Free accounts are capped at a fixed total.
func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handler.document.create"

	account, ok := requireAccount(w, r, h.logger)
	if !ok {
		return
	}

	var req createDocumentRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	document, err := h.documents.Create(r.Context(), account, domain.CreateDocumentParams{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		Tags:     req.Tags,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, document)
}

// Update applies a partial update to a document.
func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "handler.document.update"

	account, ok := requireAccount(w, r, h.logger)
	if !ok {
		return
	}
	id, err := pathID(r, op, "Document")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req updateDocumentRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	document, err := h.documents.Update(r.Context(), domain.UpdateDocumentParams{
		ID:        id,
		AccountID: account.ID,
		Title:     req.Title,
		Content:   req.Content,
		Category:  req.Category,
		Tags:      req.Tags,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, document)
}

// Delete removes a document.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "handler.document.delete"

	account, ok := requireAccount(w, r, h.logger)
	if !ok {
		return
	}
	id, err := pathID(r, op, "Document")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	if err := h.documents.Delete(r.Context(), id, account.ID); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, deleted)
}
