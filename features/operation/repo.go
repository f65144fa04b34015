package operation

import (
	"context"
	"database/sql"
	"encoding/json"
)

type Repository interface {
	Save(ctx context.Context, op *Operation) error
	List(ctx context.Context) ([]Operation, error)
	Get(ctx context.Context, id string) (*Operation, error)
	UpdateStatus(ctx context.Context, id, status string) error
	MarkFailed(ctx context.Context, id, errMsg string) error
	CountByStatus(ctx context.Context, status string) (int, error)
}

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Save(ctx context.Context, op *Operation) error {
	query := `INSERT INTO operations (operation_type, status, metadata) VALUES ($1, $2, $3) RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query, op.Type, op.Status, []byte(op.Metadata)).Scan(&op.ID, &op.CreatedAt)
}

func (r *PostgresRepo) List(ctx context.Context) ([]Operation, error) {
	query := `SELECT id, operation_type, status, metadata, last_error, created_at FROM operations ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ops []Operation
	for rows.Next() {
		op, err := scanOperation(rows.Scan)
		if err != nil {
			return nil, err
		}
		ops = append(ops, *op)
	}
	return ops, rows.Err()
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (*Operation, error) {
	query := `SELECT id, operation_type, status, metadata, last_error, created_at FROM operations WHERE id = $1`
	return scanOperation(r.db.QueryRowContext(ctx, query, id).Scan)
}

func (r *PostgresRepo) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE operations SET status = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, status, id)
	return err
}

func (r *PostgresRepo) MarkFailed(ctx context.Context, id, errMsg string) error {
	query := `UPDATE operations SET status = 'failed', last_error = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, errMsg, id)
	return err
}

func (r *PostgresRepo) CountByStatus(ctx context.Context, status string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM operations WHERE status = $1`
	err := r.db.QueryRowContext(ctx, query, status).Scan(&count)
	return count, err
}

func scanOperation(scan func(dest ...any) error) (*Operation, error) {
	op := &Operation{}
	var metadata []byte
	var lastError sql.NullString
	if err := scan(&op.ID, &op.Type, &op.Status, &metadata, &lastError, &op.CreatedAt); err != nil {
		return nil, err
	}
	op.Metadata = json.RawMessage(metadata)
	op.LastError = lastError.String
	return op, nil
}
