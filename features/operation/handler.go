package operation

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"opsdesk/apps/backend/internal/middleware"
)

type Handler struct {
	planner *Planner
	repo    Repository
}

func NewHandler(planner *Planner, repo Repository) *Handler {
	return &Handler{planner: planner, repo: repo}
}

type planReq struct {
	BatchSize int `json:"batch_size"`
}

func (h *Handler) Plan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	var req planReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		h.writeError(ctx, w, "VALIDATION_ERROR", "invalid request body", http.StatusBadRequest)
		return
	}

	slog.InfoContext(ctx, "planning embedding batches", "batch_size", req.BatchSize, "correlationId", correlationID)

	result, err := h.planner.PlanEmbeddingBatches(ctx, req.BatchSize)
	if err != nil {
		slog.ErrorContext(ctx, "failed to plan embedding batches", "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to plan embedding batches", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	resp := map[string]interface{}{
		"data": result,
		"meta": map[string]int{"batches_created": len(result.Created)},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	ops, err := h.repo.List(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list operations", "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to list operations", http.StatusInternalServerError)
		return
	}

	if ops == nil {
		ops = []Operation{}
	}

	w.Header().Set("Content-Type", "application/json")
	resp := map[string]interface{}{
		"data": ops,
		"meta": map[string]int{"count": len(ops)},
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
