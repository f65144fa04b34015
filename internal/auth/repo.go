package auth

import (
	"context"
	"database/sql"
)

type Repository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetRole(ctx context.Context, userID string) (string, error)
	Save(ctx context.Context, u *User) error
}

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	u := &User{}
	query := `SELECT id, email, password_hash, role, created_at FROM users WHERE email = $1`
	err := r.db.QueryRowContext(ctx, query, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *PostgresRepo) GetRole(ctx context.Context, userID string) (string, error) {
	var role string
	query := `SELECT role FROM users WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&role)
	if err != nil {
		return "", err
	}
	return role, nil
}

func (r *PostgresRepo) Save(ctx context.Context, u *User) error {
	query := `INSERT INTO users (email, password_hash, role) VALUES ($1, $2, $3) RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query, u.Email, u.PasswordHash, u.Role).Scan(&u.ID, &u.CreatedAt)
}
