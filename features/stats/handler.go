package stats

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"opsdesk/apps/backend/internal/middleware"
)

type TicketRepo interface {
	Count(ctx context.Context) (int, error)
}

type OperationRepo interface {
	CountByStatus(ctx context.Context, status string) (int, error)
}

type DeliveryLogRepo interface {
	CountErrorDeliveries(ctx context.Context) (int, error)
}

type VectorStore interface {
	CountEmbeddings(ctx context.Context) (int, error)
}

type Handler struct {
	ticketRepo    TicketRepo
	operationRepo OperationRepo
	deliveryRepo  DeliveryLogRepo
	vectorStore   VectorStore
}

func NewHandler(t TicketRepo, o OperationRepo, d DeliveryLogRepo, v VectorStore) *Handler {
	return &Handler{ticketRepo: t, operationRepo: o, deliveryRepo: d, vectorStore: v}
}

type StatsResponse struct {
	Tickets           int `json:"tickets"`
	PendingOperations int `json:"pending_operations"`
	FailedDeliveries  int `json:"failed_deliveries"`
	Embeddings        int `json:"embeddings"`
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	slog.InfoContext(ctx, "getting stats", "correlationId", correlationID)

	tCount, err := h.ticketRepo.Count(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count tickets", "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to count tickets", http.StatusInternalServerError)
		return
	}

	oCount, err := h.operationRepo.CountByStatus(ctx, "pending")
	if err != nil {
		slog.ErrorContext(ctx, "failed to count operations", "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to count operations", http.StatusInternalServerError)
		return
	}

	dCount, err := h.deliveryRepo.CountErrorDeliveries(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count failed deliveries", "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to count failed deliveries", http.StatusInternalServerError)
		return
	}

	eCount, err := h.vectorStore.CountEmbeddings(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to count embeddings", "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to count embeddings", http.StatusInternalServerError)
		return
	}

	resp := StatsResponse{
		Tickets:           tCount,
		PendingOperations: oCount,
		FailedDeliveries:  dCount,
		Embeddings:        eCount,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": resp}); err != nil {
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
