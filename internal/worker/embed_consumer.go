package worker

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nsqio/go-nsq"

	"opsdesk/apps/backend/internal/middleware"
)

const (
	statusRunning   = "running"
	statusCompleted = "completed"

	embedTimeout = 60 * time.Second
)

// EmbedTaskPayload mirrors the task message published by the planner.
type EmbedTaskPayload struct {
	OperationID   string   `json:"operation_id"`
	MessageIDs    []string `json:"message_ids"`
	CorrelationID string   `json:"correlation_id,omitempty"`
}

type EmbedConsumer struct {
	embedder   Embedder
	store      VectorStore
	operations OperationUpdater
	messages   MessageFetcher
	dispatcher EventDispatcher
}

func NewEmbedConsumer(e Embedder, s VectorStore, o OperationUpdater, m MessageFetcher, d EventDispatcher) *EmbedConsumer {
	return &EmbedConsumer{
		embedder:   e,
		store:      s,
		operations: o,
		messages:   m,
		dispatcher: d,
	}
}

// HandleMessage processes one embedding operation end to end. The operation
// row is the retry unit: a failure marks the operation failed and the message
// is not requeued. Embeddings are replaced per message id, so re-running an
// operation that partially completed is safe.
func (h *EmbedConsumer) HandleMessage(m *nsq.Message) error {
	if len(m.Body) == 0 {
		return nil
	}

	var payload EmbedTaskPayload
	if err := json.Unmarshal(m.Body, &payload); err != nil {
		// Poison Pill: Invalid JSON, don't retry
		slog.Error("poison pill: invalid json", "error", err)
		return nil
	}

	ctx := context.Background()
	if payload.CorrelationID != "" {
		ctx = middleware.WithCorrelationID(ctx, payload.CorrelationID)
	}

	if err := h.operations.UpdateStatus(ctx, payload.OperationID, statusRunning); err != nil {
		slog.ErrorContext(ctx, "failed to mark operation running", "error", err, "operation_id", payload.OperationID)
		return err // Retry
	}

	embedded := 0
	for _, msgID := range payload.MessageIDs {
		ticketID, body, err := h.messages.GetMessage(ctx, msgID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				// Message deleted between planning and execution.
				slog.WarnContext(ctx, "message gone, skipping", "message_id", msgID, "operation_id", payload.OperationID)
				continue
			}
			return h.fail(ctx, payload, fmt.Sprintf("failed to fetch message %s: %v", msgID, err))
		}

		if err := h.embedOne(ctx, msgID, ticketID, body); err != nil {
			return h.fail(ctx, payload, fmt.Sprintf("failed to embed message %s: %v", msgID, err))
		}
		embedded++
	}

	if err := h.operations.UpdateStatus(ctx, payload.OperationID, statusCompleted); err != nil {
		slog.ErrorContext(ctx, "failed to mark operation completed", "error", err, "operation_id", payload.OperationID)
		return err // Retry
	}

	if err := h.dispatcher.Dispatch(ctx, EventOperationCompleted, OperationEvent{
		OperationID:  payload.OperationID,
		MessageCount: embedded,
	}); err != nil {
		slog.WarnContext(ctx, "failed to dispatch completion event", "error", err, "operation_id", payload.OperationID)
	}

	slog.InfoContext(ctx, "operation completed", "operation_id", payload.OperationID, "embedded", embedded)
	return nil
}

func (h *EmbedConsumer) embedOne(ctx context.Context, msgID, ticketID, body string) error {
	contextualString := fmt.Sprintf("Ticket: %s\n---\n%s", ticketID, body)

	embedCtx, cancel := context.WithTimeout(ctx, embedTimeout)
	defer cancel()

	vector, err := h.embedder.Embed(embedCtx, contextualString)
	if err != nil {
		return err
	}

	// Replace any previous embedding for this message before storing.
	if err := h.store.DeleteEmbeddingsByMessageID(embedCtx, msgID); err != nil {
		return err
	}

	return h.store.SaveEmbedding(embedCtx, Embedding{
		MessageID: msgID,
		TicketID:  ticketID,
		Body:      body,
		Vector:    vector,
	})
}

func (h *EmbedConsumer) fail(ctx context.Context, payload EmbedTaskPayload, reason string) error {
	slog.ErrorContext(ctx, "operation failed", "operation_id", payload.OperationID, "reason", reason)

	if err := h.operations.MarkFailed(ctx, payload.OperationID, reason); err != nil {
		slog.ErrorContext(ctx, "failed to mark operation failed", "error", err, "operation_id", payload.OperationID)
		return err // Retry
	}

	if err := h.dispatcher.Dispatch(ctx, EventOperationFailed, OperationEvent{
		OperationID: payload.OperationID,
		Error:       reason,
	}); err != nil {
		slog.WarnContext(ctx, "failed to dispatch failure event", "error", err, "operation_id", payload.OperationID)
	}

	// The operation row records the failure; don't requeue.
	return nil
}
