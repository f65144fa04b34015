package webhook

import "time"

type Webhook struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
}

// DeliveryLogEntry is one webhook delivery attempt. Entries are append-only;
// nothing updates or deletes them. A nil StatusCode means the attempt never
// got a response (transport failure).
type DeliveryLogEntry struct {
	ID         string    `json:"id"`
	WebhookID  string    `json:"webhook_id"`
	Event      string    `json:"event"`
	StatusCode *int      `json:"status_code"`
	CreatedAt  time.Time `json:"created_at"`

	// Joined from the webhooks table at read time, so a renamed webhook shows
	// its current name in historical queries.
	WebhookName string `json:"webhook_name,omitempty"`
	WebhookURL  string `json:"webhook_url,omitempty"`
}

type Classification string

const (
	ClassificationSuccess      Classification = "success"
	ClassificationError        Classification = "error"
	ClassificationUnclassified Classification = "unclassified"
)

// Classify derives the status classification of a delivery attempt. Codes in
// [300,400) are deliberately neither success nor error: redirects are not a
// delivery outcome, and both status filters exclude them.
func Classify(statusCode *int) Classification {
	switch {
	case statusCode == nil:
		return ClassificationError
	case *statusCode >= 200 && *statusCode < 300:
		return ClassificationSuccess
	case *statusCode >= 400:
		return ClassificationError
	default:
		return ClassificationUnclassified
	}
}
