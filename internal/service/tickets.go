package service

import (
	"context"
	"errors"
	"strings"

	"ticketdesk/internal/models"
	"ticketdesk/internal/store"

	"github.com/google/uuid"
)

// recordNumberAttempts bounds CreateTicket: the first try plus one retry
// after losing a record number race.
const recordNumberAttempts = 2

type CreateTicketInput struct {
	Description string `json:"description" validate:"required"`
	Priority    string `json:"priority" validate:"required,oneof=Low Medium High"`
	UserID      string `json:"user_id" validate:"required"`
}

type TicketPatch struct {
	Description *string `json:"description"`
	Priority    *string `json:"priority" validate:"omitempty,oneof=Low Medium High"`
	Status      *string `json:"status"`
	Resolution  *string `json:"resolution"`
}

func (s *Service) CreateTicket(ctx context.Context, input CreateTicketInput) (models.Ticket, error) {
	input.Description = strings.TrimSpace(input.Description)
	input.Priority = strings.TrimSpace(input.Priority)
	input.UserID = strings.TrimSpace(input.UserID)
	if err := validateStruct(input); err != nil {
		return models.Ticket{}, err
	}
	if _, err := s.GetUser(ctx, input.UserID); err != nil {
		return models.Ticket{}, err
	}

	now := s.now()
	ticket := models.Ticket{
		TicketID:    uuid.NewString(),
		Description: input.Description,
		Priority:    input.Priority,
		UserID:      input.UserID,
		Status:      models.StatusNew,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for attempt := 1; attempt <= recordNumberAttempts; attempt++ {
		recordNumber, err := s.nextRecordNumber(ctx, now)
		if err != nil {
			return models.Ticket{}, err
		}
		ticket.RecordNumber = recordNumber

		created, err := s.store.CreateTicket(ctx, ticket)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, store.ErrDuplicateRecordNumber) {
			return models.Ticket{}, storeError("create ticket", err)
		}
		s.logger.Warn("record number taken", "record_number", recordNumber, "attempt", attempt)
	}
	return models.Ticket{}, newError(ErrConflict, "record number already taken, please retry")
}

func (s *Service) ListTickets(ctx context.Context) ([]models.Ticket, error) {
	tickets, err := s.store.ListTickets(ctx)
	if err != nil {
		return nil, storeError("list tickets", err)
	}
	return tickets, nil
}

// GetTicket returns the ticket with its owner and iterations expanded.
func (s *Service) GetTicket(ctx context.Context, ticketID string) (models.TicketDetail, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return models.TicketDetail{}, err
	}

	detail := models.TicketDetail{Ticket: ticket, Iterations: []models.TicketIteration{}}
	owner, err := s.store.GetUser(ctx, ticket.UserID)
	switch {
	case err == nil:
		view := owner.View()
		detail.User = &view
	case !errors.Is(err, store.ErrUserNotFound):
		return models.TicketDetail{}, storeError("load ticket owner", err)
	}

	iterations, err := s.store.ListIterationsByTicket(ctx, ticket.TicketID)
	if err != nil {
		return models.TicketDetail{}, storeError("list ticket iterations", err)
	}
	if len(iterations) > 0 {
		detail.Iterations = iterations
	}
	return detail, nil
}

// UpdateTicket applies patch to an open ticket. Created, owner and record
// number never change.
func (s *Service) UpdateTicket(ctx context.Context, ticketID string, patch TicketPatch) (models.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return models.Ticket{}, err
	}
	if ticket.IsClosed() {
		return models.Ticket{}, newError(ErrConflict, "ticket closed")
	}

	patch.Description = trimmed(patch.Description)
	patch.Priority = trimmed(patch.Priority)
	patch.Status = trimmed(patch.Status)
	if err := validateStruct(patch); err != nil {
		return models.Ticket{}, err
	}

	if patch.Description != nil {
		if *patch.Description == "" {
			return models.Ticket{}, newError(ErrValidation, "description is required")
		}
		ticket.Description = *patch.Description
	}
	if patch.Priority != nil {
		ticket.Priority = *patch.Priority
	}
	if patch.Status != nil {
		if !store.ValidStatus(*patch.Status) {
			return models.Ticket{}, newError(ErrValidation, "status must be one of [NEW, In Progress, Dispatched, Closed, Cancelled]")
		}
		if !store.ValidTransition(ticket.Status, *patch.Status) {
			return models.Ticket{}, newError(ErrConflict, "ticket cannot move from %s to %s", ticket.Status, *patch.Status)
		}
		ticket.Status = *patch.Status
	}
	if patch.Resolution != nil {
		ticket.Resolution = patch.Resolution
	}
	ticket.UpdatedAt = s.now()

	updated, err := s.store.UpdateTicket(ctx, ticket)
	if err != nil {
		return models.Ticket{}, storeError("update ticket", err)
	}
	if updated.IsClosed() {
		s.logger.Info("ticket closed", "ticket_id", updated.TicketID, "record_number", updated.RecordNumber)
	}
	return updated, nil
}

// RemoveTicket deletes a ticket together with its iterations.
func (s *Service) RemoveTicket(ctx context.Context, ticketID string) error {
	if !isValidUUID(ticketID) {
		return newError(ErrNotFound, "ticket not found")
	}
	if err := s.store.DeleteTicket(ctx, ticketID); err != nil {
		return storeError("delete ticket", err)
	}
	return nil
}

func (s *Service) loadTicket(ctx context.Context, ticketID string) (models.Ticket, error) {
	if !isValidUUID(ticketID) {
		return models.Ticket{}, newError(ErrNotFound, "ticket not found")
	}
	ticket, err := s.store.GetTicket(ctx, ticketID)
	if err != nil {
		return models.Ticket{}, storeError("get ticket", err)
	}
	return ticket, nil
}
