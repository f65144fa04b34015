package message

import (
	"context"
	"database/sql"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Save(ctx context.Context, m *Message) error {
	query := `INSERT INTO messages (ticket_id, author_id, body) VALUES ($1, $2, $3) RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query, m.TicketID, m.AuthorID, m.Body).Scan(&m.ID, &m.CreatedAt)
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (*Message, error) {
	m := &Message{}
	query := `SELECT id, ticket_id, author_id, body, created_at FROM messages WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&m.ID, &m.TicketID, &m.AuthorID, &m.Body, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *PostgresRepo) ListByTicket(ctx context.Context, ticketID string) ([]Message, error) {
	query := `SELECT id, ticket_id, author_id, body, created_at FROM messages WHERE ticket_id = $1 ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.TicketID, &m.AuthorID, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// ListIDs returns every message id in insertion order. The planner depends
// on this ordering being stable between runs.
func (r *PostgresRepo) ListIDs(ctx context.Context) ([]string, error) {
	query := `SELECT id FROM messages ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
