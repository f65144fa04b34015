package worker

import (
	"context"
)

// Embedding is one stored vector for one message. The message id is the
// idempotency key: storing a message again replaces its previous embedding.
type Embedding struct {
	MessageID string
	TicketID  string
	Body      string
	Vector    []float32
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type VectorStore interface {
	SaveEmbedding(ctx context.Context, emb Embedding) error
	DeleteEmbeddingsByMessageID(ctx context.Context, messageID string) error
}

type OperationUpdater interface {
	UpdateStatus(ctx context.Context, id, status string) error
	MarkFailed(ctx context.Context, id, reason string) error
}

type MessageFetcher interface {
	GetMessage(ctx context.Context, id string) (ticketID, body string, err error)
}

type EventDispatcher interface {
	Dispatch(ctx context.Context, event string, payload interface{}) error
}
