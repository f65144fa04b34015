package ticket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"opsdesk/apps/backend/internal/auth"
	"opsdesk/apps/backend/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

type createTicketReq struct {
	Subject     string `json:"subject"`
	RequesterID string `json:"requester_id"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	var req createTicketReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(ctx, w, "VALIDATION_ERROR", "invalid request body", http.StatusBadRequest)
		return
	}
	req.Subject = strings.TrimSpace(req.Subject)
	if req.Subject == "" {
		h.writeError(ctx, w, "VALIDATION_ERROR", "subject is required", http.StatusBadRequest)
		return
	}

	t := &Ticket{Subject: req.Subject, RequesterID: req.RequesterID}
	if err := h.service.Create(ctx, t); err != nil {
		slog.ErrorContext(ctx, "failed to create ticket", "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to create ticket", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": t}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	tickets, err := h.service.List(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list tickets", "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to list tickets", http.StatusInternalServerError)
		return
	}
	if tickets == nil {
		tickets = []Ticket{}
	}

	w.Header().Set("Content-Type", "application/json")
	resp := map[string]interface{}{
		"data": tickets,
		"meta": map[string]int{"count": len(tickets)},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

type bulkDeleteReq struct {
	TicketIDs []string `json:"ticket_ids"`
}

func (h *Handler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	var req bulkDeleteReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(ctx, w, "VALIDATION_ERROR", "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.service.BulkDelete(ctx, req.TicketIDs)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUnauthorized):
			h.writeError(ctx, w, "UNAUTHORIZED", "authentication required", http.StatusUnauthorized)
		case errors.Is(err, auth.ErrForbidden):
			h.writeError(ctx, w, "FORBIDDEN", "administrator role required", http.StatusForbidden)
		case errors.Is(err, auth.ErrRoleNotFound):
			h.writeError(ctx, w, "ROLE_NOT_FOUND", "caller role not found", http.StatusNotFound)
		case errors.Is(err, ErrEmptyIDList):
			h.writeError(ctx, w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		default:
			slog.ErrorContext(ctx, "failed to bulk delete tickets", "error", err, "correlationId", correlationID)
			h.writeError(ctx, w, "INTERNAL_ERROR", "failed to bulk delete tickets", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": result}); err != nil {
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
