package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"opsdesk/apps/backend/internal/auth"
	"opsdesk/apps/backend/internal/middleware"
)

type Handler struct {
	repo     Repository
	logQuery *LogQueryService
}

func NewHandler(repo Repository, logQuery *LogQueryService) *Handler {
	return &Handler{repo: repo, logQuery: logQuery}
}

type createWebhookReq struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Enabled *bool  `json:"enabled"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	var req createWebhookReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(ctx, w, "VALIDATION_ERROR", "invalid request body", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.URL = strings.TrimSpace(req.URL)
	if req.Name == "" || req.URL == "" {
		h.writeError(ctx, w, "VALIDATION_ERROR", "name and url are required", http.StatusBadRequest)
		return
	}

	wh := &Webhook{Name: req.Name, URL: req.URL, Enabled: true}
	if req.Enabled != nil {
		wh.Enabled = *req.Enabled
	}

	if err := h.repo.SaveWebhook(ctx, wh); err != nil {
		slog.ErrorContext(ctx, "failed to save webhook", "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to save webhook", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": wh}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	hooks, err := h.repo.ListWebhooks(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list webhooks", "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to list webhooks", http.StatusInternalServerError)
		return
	}
	if hooks == nil {
		hooks = []Webhook{}
	}

	w.Header().Set("Content-Type", "application/json")
	resp := map[string]interface{}{
		"data": hooks,
		"meta": map[string]int{"count": len(hooks)},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// QueryLogs serves the delivery audit log. Pagination is 1-based and not
// silently clamped; authorization failures map to their own status codes
// rather than collapsing into 403.
func (h *Handler) QueryLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	q := r.URL.Query()
	filter := LogFilter{
		WebhookID: strings.TrimSpace(q.Get("webhook_id")),
		Event:     strings.TrimSpace(q.Get("event")),
		Status:    Classification(strings.TrimSpace(q.Get("status"))),
	}

	page := 1
	limit := 20
	var err error
	if v := q.Get("page"); v != "" {
		if page, err = strconv.Atoi(v); err != nil {
			h.writeError(ctx, w, "VALIDATION_ERROR", "page must be an integer", http.StatusBadRequest)
			return
		}
	}
	if v := q.Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil {
			h.writeError(ctx, w, "VALIDATION_ERROR", "limit must be an integer", http.StatusBadRequest)
			return
		}
	}

	result, err := h.logQuery.Query(ctx, filter, page, limit)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUnauthorized):
			h.writeError(ctx, w, "UNAUTHORIZED", "authentication required", http.StatusUnauthorized)
		case errors.Is(err, auth.ErrForbidden):
			h.writeError(ctx, w, "FORBIDDEN", "administrator role required", http.StatusForbidden)
		case errors.Is(err, auth.ErrRoleNotFound):
			h.writeError(ctx, w, "ROLE_NOT_FOUND", "caller role not found", http.StatusNotFound)
		case errors.Is(err, ErrInvalidPagination), errors.Is(err, ErrInvalidStatusFilter):
			h.writeError(ctx, w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		default:
			slog.ErrorContext(ctx, "failed to query delivery logs", "error", err, "correlationId", correlationID)
			h.writeError(ctx, w, "INTERNAL_ERROR", "failed to query delivery logs", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	resp := map[string]interface{}{
		"data": result.Entries,
		"pagination": map[string]int{
			"total":        result.Total,
			"pages":        result.Pages,
			"current_page": result.CurrentPage,
			"limit":        result.Limit,
		},
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
