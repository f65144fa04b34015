package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var (
	ErrUnauthorized = errors.New("no authenticated caller")
	ErrForbidden    = errors.New("caller role is not permitted")
	ErrRoleNotFound = errors.New("caller role not found")
)

type RoleLookup interface {
	GetRole(ctx context.Context, userID string) (string, error)
}

// Guard is the single authorization check for privileged actions (bulk
// deletion, delivery log access). Every privileged service calls Authorize
// before touching a store; any ambiguity during the role lookup resolves to
// the restrictive outcome, never to allow.
type Guard struct {
	roles RoleLookup
}

func NewGuard(roles RoleLookup) *Guard {
	return &Guard{roles: roles}
}

func (g *Guard) Authorize(ctx context.Context) error {
	callerID, ok := CallerFromContext(ctx)
	if !ok {
		return ErrUnauthorized
	}

	role, err := g.roles.GetRole(ctx, callerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRoleNotFound
		}
		return fmt.Errorf("role lookup failed: %w", err)
	}

	if role != RoleAdministrator {
		return ErrForbidden
	}
	return nil
}
