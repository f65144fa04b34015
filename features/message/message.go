package message

import (
	"context"
	"time"
)

type Message struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticket_id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type Repository interface {
	Save(ctx context.Context, m *Message) error
	Get(ctx context.Context, id string) (*Message, error)
	ListByTicket(ctx context.Context, ticketID string) ([]Message, error)
	ListIDs(ctx context.Context) ([]string, error)
}
