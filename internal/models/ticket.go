package models

import "time"

type Ticket struct {
	TicketID     string    `json:"ticket_id"`
	RecordNumber string    `json:"record_number"`
	Description  string    `json:"description"`
	Priority     string    `json:"priority"`
	UserID       string    `json:"user_id"`
	Status       string    `json:"status"`
	Resolution   *string   `json:"resolution,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TicketDetail is the single-record read of a ticket with its owner and
// iteration trail expanded.
type TicketDetail struct {
	Ticket
	User       *UserView         `json:"user,omitempty"`
	Iterations []TicketIteration `json:"iterations"`
}

const (
	StatusNew        = "NEW"
	StatusInProgress = "In Progress"
	StatusDispatched = "Dispatched"
	StatusClosed     = "Closed"
	StatusCancelled  = "Cancelled"
)

const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

func (t Ticket) IsClosed() bool {
	return t.Status == StatusClosed
}
