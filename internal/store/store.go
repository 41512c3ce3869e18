package store

import (
	"context"

	"ticketdesk/internal/models"
)

type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	GetUser(ctx context.Context, userID string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, user models.User) (models.User, error)
	DeleteUser(ctx context.Context, userID string) error
}

// TicketStore persists tickets. UpdateTicket must refuse to touch a ticket
// whose stored status is Closed and report ErrTicketClosed; DeleteTicket
// removes the ticket's iterations with it.
type TicketStore interface {
	CreateTicket(ctx context.Context, ticket models.Ticket) (models.Ticket, error)
	GetTicket(ctx context.Context, ticketID string) (models.Ticket, error)
	ListTickets(ctx context.Context) ([]models.Ticket, error)
	LatestRecordNumber(ctx context.Context, datePrefix string) (string, bool, error)
	UpdateTicket(ctx context.Context, ticket models.Ticket) (models.Ticket, error)
	DeleteTicket(ctx context.Context, ticketID string) error
}

// IterationStore persists iterations. CreateIteration and UpdateIteration
// re-check the parent ticket inside the write and report ErrTicketClosed.
type IterationStore interface {
	CreateIteration(ctx context.Context, iteration models.TicketIteration) (models.TicketIteration, error)
	GetIteration(ctx context.Context, iterationID string) (models.TicketIteration, error)
	ListIterations(ctx context.Context) ([]models.TicketIteration, error)
	ListIterationsByTicket(ctx context.Context, ticketID string) ([]models.TicketIteration, error)
	UpdateIteration(ctx context.Context, iteration models.TicketIteration) (models.TicketIteration, error)
	DeleteIteration(ctx context.Context, iterationID string) error
}

type Store interface {
	UserStore
	TicketStore
	IterationStore
}
