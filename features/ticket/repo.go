package ticket

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Save(ctx context.Context, t *Ticket) error {
	query := `INSERT INTO tickets (subject, status, requester_id) VALUES ($1, $2, $3) RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query, t.Subject, t.Status, t.RequesterID).Scan(&t.ID, &t.CreatedAt)
}

func (r *PostgresRepo) List(ctx context.Context) ([]Ticket, error) {
	query := `SELECT id, subject, status, requester_id, created_at FROM tickets ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []Ticket
	for rows.Next() {
		var t Ticket
		if err := rows.Scan(&t.ID, &t.Subject, &t.Status, &t.RequesterID, &t.CreatedAt); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func (r *PostgresRepo) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	query := `DELETE FROM tickets WHERE id = ANY($1)`
	res, err := r.db.ExecContext(ctx, query, pq.Array(ids))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *PostgresRepo) Count(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM tickets`
	err := r.db.QueryRowContext(ctx, query).Scan(&count)
	return count, err
}
