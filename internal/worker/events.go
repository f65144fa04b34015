package worker

// Events dispatched to registered webhooks when an embedding operation
// finishes.
const (
	EventOperationCompleted = "operation.completed"
	EventOperationFailed    = "operation.failed"
)

type OperationEvent struct {
	OperationID  string `json:"operation_id"`
	MessageCount int    `json:"message_count"`
	Error        string `json:"error,omitempty"`
}
