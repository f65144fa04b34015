package auth_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"opsdesk/apps/backend/internal/auth"
)

type stubRoleLookup struct {
	role string
	err  error
}

func (s *stubRoleLookup) GetRole(ctx context.Context, userID string) (string, error) {
	return s.role, s.err
}

func TestGuard_Authorize(t *testing.T) {
	t.Run("NoCallerIsUnauthorized", func(t *testing.T) {
		guard := auth.NewGuard(&stubRoleLookup{role: auth.RoleAdministrator})

		err := guard.Authorize(context.Background())
		assert.ErrorIs(t, err, auth.ErrUnauthorized)
	})

	t.Run("AdministratorAllowed", func(t *testing.T) {
		guard := auth.NewGuard(&stubRoleLookup{role: auth.RoleAdministrator})

		ctx := auth.WithCaller(context.Background(), "u1")
		assert.NoError(t, guard.Authorize(ctx))
	})

	t.Run("WorkerForbidden", func(t *testing.T) {
		guard := auth.NewGuard(&stubRoleLookup{role: auth.RoleWorker})

		ctx := auth.WithCaller(context.Background(), "u1")
		assert.ErrorIs(t, guard.Authorize(ctx), auth.ErrForbidden)
	})

	t.Run("CustomerForbidden", func(t *testing.T) {
		guard := auth.NewGuard(&stubRoleLookup{role: auth.RoleCustomer})

		ctx := auth.WithCaller(context.Background(), "u1")
		assert.ErrorIs(t, guard.Authorize(ctx), auth.ErrForbidden)
	})

	t.Run("MissingRoleRowIsRoleNotFound", func(t *testing.T) {
		guard := auth.NewGuard(&stubRoleLookup{err: sql.ErrNoRows})

		ctx := auth.WithCaller(context.Background(), "ghost")
		assert.ErrorIs(t, guard.Authorize(ctx), auth.ErrRoleNotFound)
	})

	t.Run("LookupErrorIsNotForbidden", func(t *testing.T) {
		guard := auth.NewGuard(&stubRoleLookup{err: errors.New("db down")})

		ctx := auth.WithCaller(context.Background(), "u1")
		err := guard.Authorize(ctx)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, auth.ErrForbidden)
		assert.NotErrorIs(t, err, auth.ErrRoleNotFound)
	})
}
