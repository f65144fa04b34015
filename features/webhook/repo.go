package webhook

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

type LogFilter struct {
	WebhookID string
	Event     string
	Status    Classification
}

type Repository interface {
	SaveWebhook(ctx context.Context, wh *Webhook) error
	ListWebhooks(ctx context.Context) ([]Webhook, error)
	ListEnabledWebhooks(ctx context.Context) ([]Webhook, error)
	AppendDeliveryLog(ctx context.Context, entry *DeliveryLogEntry) error
	QueryDeliveryLogs(ctx context.Context, f LogFilter, limit, offset int) ([]DeliveryLogEntry, error)
	CountDeliveryLogs(ctx context.Context, f LogFilter) (int, error)
}

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) SaveWebhook(ctx context.Context, wh *Webhook) error {
	query := `INSERT INTO webhooks (name, url, enabled) VALUES ($1, $2, $3) RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query, wh.Name, wh.URL, wh.Enabled).Scan(&wh.ID, &wh.CreatedAt)
}

func (r *PostgresRepo) ListWebhooks(ctx context.Context) ([]Webhook, error) {
	query := `SELECT id, name, url, enabled, created_at FROM webhooks ORDER BY created_at DESC`
	return r.listWebhooks(ctx, query)
}

func (r *PostgresRepo) ListEnabledWebhooks(ctx context.Context) ([]Webhook, error) {
	query := `SELECT id, name, url, enabled, created_at FROM webhooks WHERE enabled = true ORDER BY created_at DESC`
	return r.listWebhooks(ctx, query)
}

func (r *PostgresRepo) listWebhooks(ctx context.Context, query string) ([]Webhook, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hooks []Webhook
	for rows.Next() {
		var wh Webhook
		if err := rows.Scan(&wh.ID, &wh.Name, &wh.URL, &wh.Enabled, &wh.CreatedAt); err != nil {
			return nil, err
		}
		hooks = append(hooks, wh)
	}
	return hooks, rows.Err()
}

func (r *PostgresRepo) AppendDeliveryLog(ctx context.Context, entry *DeliveryLogEntry) error {
	query := `INSERT INTO webhook_delivery_logs (webhook_id, event, status_code) VALUES ($1, $2, $3) RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query, entry.WebhookID, entry.Event, entry.StatusCode).Scan(&entry.ID, &entry.CreatedAt)
}

// filterConditions builds WHERE clauses for a log filter. The status filter
// is expressed directly over the nullable status_code column: success is
// [200,300), error is >= 400 or never-answered. Redirect codes match neither
// and only appear in unfiltered queries.
func filterConditions(f LogFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if f.WebhookID != "" {
		args = append(args, f.WebhookID)
		conds = append(conds, fmt.Sprintf("l.webhook_id = $%d", len(args)))
	}
	if f.Event != "" {
		args = append(args, f.Event)
		conds = append(conds, fmt.Sprintf("l.event = $%d", len(args)))
	}
	switch f.Status {
	case ClassificationSuccess:
		conds = append(conds, "l.status_code >= 200 AND l.status_code < 300")
	case ClassificationError:
		conds = append(conds, "(l.status_code >= 400 OR l.status_code IS NULL)")
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *PostgresRepo) QueryDeliveryLogs(ctx context.Context, f LogFilter, limit, offset int) ([]DeliveryLogEntry, error) {
	where, args := filterConditions(f)
	query := `SELECT l.id, l.webhook_id, l.event, l.status_code, l.created_at, w.name, w.url FROM webhook_delivery_logs l JOIN webhooks w ON w.id = l.webhook_id` +
		where +
		fmt.Sprintf(` ORDER BY l.created_at DESC, l.id ASC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []DeliveryLogEntry
	for rows.Next() {
		var e DeliveryLogEntry
		var statusCode sql.NullInt64
		if err := rows.Scan(&e.ID, &e.WebhookID, &e.Event, &statusCode, &e.CreatedAt, &e.WebhookName, &e.WebhookURL); err != nil {
			return nil, err
		}
		if statusCode.Valid {
			code := int(statusCode.Int64)
			e.StatusCode = &code
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *PostgresRepo) CountDeliveryLogs(ctx context.Context, f LogFilter) (int, error) {
	where, args := filterConditions(f)
	query := `SELECT COUNT(*) FROM webhook_delivery_logs l` + where

	var count int
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}
