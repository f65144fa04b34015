package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"opsdesk/apps/backend/internal/middleware"
)

// Dispatcher POSTs an event to every enabled webhook and appends one
// delivery log entry per attempt. A transport failure (no response at all)
// is recorded with a NULL status code; the log is the audit trail either way.
type Dispatcher struct {
	repo   Repository
	client *http.Client
	logger *slog.Logger
}

func NewDispatcher(repo Repository, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		repo:   repo,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type eventEnvelope struct {
	Event         string      `json:"event"`
	Data          interface{} `json:"data"`
	CorrelationID string      `json:"correlation_id,omitempty"`
	OccurredAt    time.Time   `json:"occurred_at"`
}

func (d *Dispatcher) Dispatch(ctx context.Context, event string, payload interface{}) error {
	hooks, err := d.repo.ListEnabledWebhooks(ctx)
	if err != nil {
		return fmt.Errorf("failed to list webhooks: %w", err)
	}
	if len(hooks) == 0 {
		return nil
	}

	body, err := json.Marshal(eventEnvelope{
		Event:         event,
		Data:          payload,
		CorrelationID: middleware.GetCorrelationID(ctx),
		OccurredAt:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	for _, hook := range hooks {
		statusCode := d.deliver(ctx, hook, body)

		entry := &DeliveryLogEntry{
			WebhookID:  hook.ID,
			Event:      event,
			StatusCode: statusCode,
		}
		if err := d.repo.AppendDeliveryLog(ctx, entry); err != nil {
			d.logger.ErrorContext(ctx, "failed to append delivery log", "webhook_id", hook.ID, "event", event, "error", err)
		}
	}
	return nil
}

func (d *Dispatcher) deliver(ctx context.Context, hook Webhook, body []byte) *int {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hook.URL, bytes.NewReader(body))
	if err != nil {
		d.logger.ErrorContext(ctx, "failed to build webhook request", "webhook_id", hook.ID, "error", err)
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.WarnContext(ctx, "webhook delivery got no response", "webhook_id", hook.ID, "url", hook.URL, "error", err)
		return nil
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	code := resp.StatusCode
	if Classify(&code) != ClassificationSuccess {
		d.logger.WarnContext(ctx, "webhook delivery not accepted", "webhook_id", hook.ID, "status_code", code)
	}
	return &code
}
