package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/DukeRupert/mindpilot/internal/domain"
	"github.com/DukeRupert/mindpilot/internal/service"
	"github.com/go-chi/chi/v5"
)

// amountField accepts an amount as either a JSON string ("12.50") or a
// JSON number (12.5). Numbers keep their literal text, so no float rounding
// happens on the way in.
type amountField string

func (a *amountField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = amountField(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*a = amountField(n.String())
	return nil
}

type createTransactionRequest struct {
	Amount      amountField            `json:"amount"`
	Type        domain.TransactionType `json:"type"`
	Category    string                 `json:"category"`
	Description string                 `json:"description"`
	Date        *time.Time             `json:"date"`
	IsRecurring bool                   `json:"isRecurring"`
}

// TransactionHandler handles transaction requests and spending analysis.
type TransactionHandler struct {
	transactions service.TransactionService
	assistant    service.AssistantService
	logger       *slog.Logger
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactions service.TransactionService, assistant service.AssistantService, logger *slog.Logger) *TransactionHandler {
	return &TransactionHandler{
		transactions: transactions,
		assistant:    assistant,
		logger:       logger,
	}
}

// RegisterRoutes mounts the transaction routes.
//
// Routes:
// - GET    /transactions             -> List (?limit=)
// - POST   /transactions             -> Create
// - GET    /transactions/ai-analysis -> Analyze (premium only)
// - DELETE /transactions/{id}        -> Delete
func (h *TransactionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/transactions", h.List)
	r.Post("/transactions", h.Create)
	r.Get("/transactions/ai-analysis", h.Analyze)
	r.Delete("/transactions/{id}", h.Delete)
}

// List returns the account's transactions, most recent first.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handler.transaction.list"

	account, ok := requireAccount(w, r, h.logger)
	if !ok {
		return
	}
	limit, err := queryLimit(r, op)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	transactions, err := h.transactions.List(r.Context(), account.ID, limit)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, transactions)
}

// Create records a transaction.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handler.transaction.create"

	account, ok := requireAccount(w, r, h.logger)
	if !ok {
		return
	}

	var req createTransactionRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	params := domain.CreateTransactionParams{
		AccountID:   account.ID,
		Amount:      string(req.Amount),
		Type:        req.Type,
		Category:    req.Category,
		Description: req.Description,
		IsRecurring: req.IsRecurring,
	}
	if req.Date != nil {
		params.Date = *req.Date
	}

	transaction, err := h.transactions.Create(r.Context(), params)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, transaction)
}

// Delete removes a transaction.
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "handler.transaction.delete"

	account, ok := requireAccount(w, r, h.logger)
	if !ok {
		return
	}
	id, err := pathID(r, op, "Transaction")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	if err := h.transactions.Delete(r.Context(), id, account.ID); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, deleted)
}

// Analyze returns AI spending insights. Premium only.
func (h *TransactionHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	account, ok := requireAccount(w, r, h.logger)
	if !ok {
		return
	}

	analysis, err := h.assistant.AnalyzeSpending(r.Context(), account)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"analysis": analysis})
}
