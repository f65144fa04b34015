package webhook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var (
	ErrInvalidPagination   = errors.New("page must be >= 1 and limit must be > 0")
	ErrInvalidStatusFilter = errors.New("status filter must be success or error")
)

type Authorizer interface {
	Authorize(ctx context.Context) error
}

// LogQueryService filters and paginates the delivery log. Reads are gated by
// the access guard: the role check completes before any row is touched.
type LogQueryService struct {
	repo   Repository
	guard  Authorizer
	logger *slog.Logger
}

func NewLogQueryService(repo Repository, guard Authorizer, logger *slog.Logger) *LogQueryService {
	return &LogQueryService{repo: repo, guard: guard, logger: logger}
}

type QueryResult struct {
	Entries     []DeliveryLogEntry `json:"data"`
	Total       int                `json:"total"`
	Pages       int                `json:"pages"`
	CurrentPage int                `json:"current_page"`
	Limit       int                `json:"limit"`
}

func (s *LogQueryService) Query(ctx context.Context, f LogFilter, page, limit int) (*QueryResult, error) {
	if err := s.guard.Authorize(ctx); err != nil {
		return nil, err
	}

	if page < 1 || limit <= 0 {
		return nil, ErrInvalidPagination
	}
	if f.Status != "" && f.Status != ClassificationSuccess && f.Status != ClassificationError {
		return nil, ErrInvalidStatusFilter
	}

	total, err := s.repo.CountDeliveryLogs(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to count delivery logs: %w", err)
	}

	entries, err := s.repo.QueryDeliveryLogs(ctx, f, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query delivery logs: %w", err)
	}
	if entries == nil {
		entries = []DeliveryLogEntry{}
	}

	pages := (total + limit - 1) / limit

	s.logger.InfoContext(ctx, "queried delivery logs",
		"total", total,
		"page", page,
		"limit", limit,
		"returned", len(entries))

	return &QueryResult{
		Entries:     entries,
		Total:       total,
		Pages:       pages,
		CurrentPage: page,
		Limit:       limit,
	}, nil
}
