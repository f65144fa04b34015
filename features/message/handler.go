package message

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"opsdesk/apps/backend/internal/middleware"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

type createMessageReq struct {
	AuthorID string `json:"author_id"`
	Body     string `json:"body"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	ticketID := r.PathValue("id")
	if ticketID == "" {
		h.writeError(ctx, w, "VALIDATION_ERROR", "ticket id is required", http.StatusBadRequest)
		return
	}

	var req createMessageReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(ctx, w, "VALIDATION_ERROR", "invalid request body", http.StatusBadRequest)
		return
	}
	req.Body = strings.TrimSpace(req.Body)
	if req.Body == "" {
		h.writeError(ctx, w, "VALIDATION_ERROR", "body is required", http.StatusBadRequest)
		return
	}

	m := &Message{TicketID: ticketID, AuthorID: req.AuthorID, Body: req.Body}
	if err := h.repo.Save(ctx, m); err != nil {
		slog.ErrorContext(ctx, "failed to create message", "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to create message", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": m}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) ListByTicket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	ticketID := r.PathValue("id")
	if ticketID == "" {
		h.writeError(ctx, w, "VALIDATION_ERROR", "ticket id is required", http.StatusBadRequest)
		return
	}

	messages, err := h.repo.ListByTicket(ctx, ticketID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list messages", "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to list messages", http.StatusInternalServerError)
		return
	}
	if messages == nil {
		messages = []Message{}
	}

	w.Header().Set("Content-Type", "application/json")
	resp := map[string]interface{}{
		"data": messages,
		"meta": map[string]int{"count": len(messages)},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
