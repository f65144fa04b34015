package operation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"opsdesk/apps/backend/internal/config"
	"opsdesk/apps/backend/internal/middleware"
)

const DefaultBatchSize = 50

// MessageSource lists the ids of every message in insertion order. Batch
// membership and numbering are deterministic for a fixed ordering.
type MessageSource interface {
	ListIDs(ctx context.Context) ([]string, error)
}

// EmbeddingIndex reports which message ids already have a stored embedding.
type EmbeddingIndex interface {
	ListEmbeddedMessageIDs(ctx context.Context) ([]string, error)
}

type EventPublisher interface {
	Publish(topic string, body []byte) error
}

type Planner struct {
	repo       Repository
	messages   MessageSource
	embeddings EmbeddingIndex
	pub        EventPublisher
	logger     *slog.Logger
}

func NewPlanner(repo Repository, messages MessageSource, embeddings EmbeddingIndex, pub EventPublisher, logger *slog.Logger) *Planner {
	return &Planner{repo: repo, messages: messages, embeddings: embeddings, pub: pub, logger: logger}
}

type PlanResult struct {
	Created      []Operation `json:"created_operations"`
	TotalPending int         `json:"total_pending"`
}

// EmbedTask is the NSQ message published for each created operation.
type EmbedTask struct {
	OperationID   string   `json:"operation_id"`
	MessageIDs    []string `json:"message_ids"`
	CorrelationID string   `json:"correlation_id,omitempty"`
}

// PlanEmbeddingBatches splits the unembedded message backlog into operations
// of at most batchSize messages each. Both reads happen before any insert so
// total_batches reflects the full backlog; a read failure aborts the plan
// with nothing created. Inserts are sequential and not transactional: if one
// fails, operations created earlier in the same run remain and the error is
// surfaced.
//
// Concurrent planning runs are not mutually exclusive. Two overlapping runs
// can batch the same message twice; the embed worker's delete-then-store
// keeps that harmless.
func (p *Planner) PlanEmbeddingBatches(ctx context.Context, batchSize int) (*PlanResult, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	embedded, err := p.embeddings.ListEmbeddedMessageIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list embedded message ids: %w", err)
	}
	done := make(map[string]struct{}, len(embedded))
	for _, id := range embedded {
		done[id] = struct{}{}
	}

	all, err := p.messages.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	var pending []string
	for _, id := range all {
		if _, ok := done[id]; !ok {
			pending = append(pending, id)
		}
	}

	result := &PlanResult{Created: []Operation{}, TotalPending: len(pending)}
	if len(pending) == 0 {
		p.logger.InfoContext(ctx, "no messages pending embedding")
		return result, nil
	}

	totalBatches := (len(pending) + batchSize - 1) / batchSize

	for i := 0; i < totalBatches; i++ {
		start := i * batchSize
		end := start + batchSize
		if end > len(pending) {
			end = len(pending)
		}

		metadata, err := json.Marshal(EmbeddingBatch{
			MessageIDs:   pending[start:end],
			BatchNumber:  i + 1,
			TotalBatches: totalBatches,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal batch metadata: %w", err)
		}

		op := Operation{
			Type:     TypeGenerateEmbeddings,
			Status:   StatusPending,
			Metadata: metadata,
		}
		if err := p.repo.Save(ctx, &op); err != nil {
			return nil, fmt.Errorf("failed to save operation for batch %d/%d: %w", i+1, totalBatches, err)
		}
		result.Created = append(result.Created, op)
	}

	p.logger.InfoContext(ctx, "planned embedding batches",
		"total_pending", result.TotalPending,
		"batches", totalBatches,
		"batch_size", batchSize)

	// Publishing is best-effort: the operation rows are the durable record,
	// and a stuck pending operation can be re-dispatched.
	p.publishTasks(ctx, result.Created, pending, batchSize)

	return result, nil
}

func (p *Planner) publishTasks(ctx context.Context, ops []Operation, pending []string, batchSize int) {
	if p.pub == nil {
		return
	}
	correlationID := middleware.GetCorrelationID(ctx)
	for i, op := range ops {
		start := i * batchSize
		end := start + batchSize
		if end > len(pending) {
			end = len(pending)
		}
		body, err := json.Marshal(EmbedTask{
			OperationID:   op.ID,
			MessageIDs:    pending[start:end],
			CorrelationID: correlationID,
		})
		if err != nil {
			p.logger.ErrorContext(ctx, "failed to marshal embed task", "operation_id", op.ID, "error", err)
			continue
		}
		if err := p.pub.Publish(config.TopicEmbedTask, body); err != nil {
			p.logger.ErrorContext(ctx, "failed to publish embed task", "operation_id", op.ID, "error", err)
		}
	}
}
