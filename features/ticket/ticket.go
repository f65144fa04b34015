package ticket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const (
	StatusOpen    = "open"
	StatusPending = "pending"
	StatusClosed  = "closed"
)

var ErrEmptyIDList = errors.New("ticket id list must not be empty")

type Ticket struct {
	ID          string    `json:"id"`
	Subject     string    `json:"subject"`
	Status      string    `json:"status"`
	RequesterID string    `json:"requester_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type Repository interface {
	Save(ctx context.Context, t *Ticket) error
	List(ctx context.Context) ([]Ticket, error)
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
	Count(ctx context.Context) (int, error)
}

type Authorizer interface {
	Authorize(ctx context.Context) error
}

type Service struct {
	repo   Repository
	guard  Authorizer
	logger *slog.Logger
}

func NewService(repo Repository, guard Authorizer, logger *slog.Logger) *Service {
	return &Service{repo: repo, guard: guard, logger: logger}
}

func (s *Service) Create(ctx context.Context, t *Ticket) error {
	if t.Status == "" {
		t.Status = StatusOpen
	}
	return s.repo.Save(ctx, t)
}

func (s *Service) List(ctx context.Context) ([]Ticket, error) {
	return s.repo.List(ctx)
}

type BulkDeleteResult struct {
	DeletedCount int `json:"deleted_count"`
}

// BulkDelete removes every ticket whose id appears in ids. The guard check
// completes before anything is validated or touched. The delete is a set
// operation: ids that do not exist are ignored, and the reported count is the
// requested count, not the affected row count (the latter is only logged).
func (s *Service) BulkDelete(ctx context.Context, ids []string) (*BulkDeleteResult, error) {
	if err := s.guard.Authorize(ctx); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, ErrEmptyIDList
	}

	affected, err := s.repo.DeleteByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to delete tickets: %w", err)
	}

	s.logger.InfoContext(ctx, "bulk deleted tickets", "requested", len(ids), "affected", affected)

	return &BulkDeleteResult{DeletedCount: len(ids)}, nil
}
