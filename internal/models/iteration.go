package models

import "time"

type TicketIteration struct {
	IterationID string    `json:"iteration_id"`
	TicketID    string    `json:"ticket_id"`
	Username    string    `json:"username"`
	Timestamp   time.Time `json:"timestamp"`
	Status      *string   `json:"status,omitempty"`
	Comment     string    `json:"comment"`
}
