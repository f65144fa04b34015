package operation

import (
	"encoding/json"
	"time"
)

const (
	TypeGenerateEmbeddings = "generate_embeddings"
)

// Status state machine: pending -> running -> completed, or
// pending|running -> failed. The planner only ever creates pending rows;
// the embed worker owns the transitions.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

type Operation struct {
	ID        string          `json:"id"`
	Type      string          `json:"operation_type"`
	Status    string          `json:"status"`
	Metadata  json.RawMessage `json:"metadata"`
	LastError string          `json:"last_error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// EmbeddingBatch is the metadata payload of a generate_embeddings operation.
type EmbeddingBatch struct {
	MessageIDs   []string `json:"message_ids"`
	BatchNumber  int      `json:"batch_number"`
	TotalBatches int      `json:"total_batches"`
}
