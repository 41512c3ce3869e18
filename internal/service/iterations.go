package service

import (
	"context"
	"strings"

	"ticketdesk/internal/models"
	"ticketdesk/internal/store"

	"github.com/google/uuid"
)

type CreateIterationInput struct {
	TicketID string  `json:"ticket_id" validate:"required"`
	Comment  string  `json:"comment" validate:"required"`
	Status   *string `json:"status"`
}

type IterationPatch struct {
	Comment *string `json:"comment"`
	Status  *string `json:"status"`
}

// CreateIteration appends a comment to an open ticket on behalf of caller.
// Without an explicit status the ticket's current status is recorded.
func (s *Service) CreateIteration(ctx context.Context, caller Identity, input CreateIterationInput) (models.TicketIteration, error) {
	input.TicketID = strings.TrimSpace(input.TicketID)
	input.Comment = strings.TrimSpace(input.Comment)
	input.Status = trimmed(input.Status)
	if err := validateStruct(input); err != nil {
		return models.TicketIteration{}, err
	}
	if err := validateIterationStatus(input.Status); err != nil {
		return models.TicketIteration{}, err
	}

	ticket, err := s.loadTicket(ctx, input.TicketID)
	if err != nil {
		return models.TicketIteration{}, err
	}
	if ticket.IsClosed() {
		return models.TicketIteration{}, newError(ErrConflict, "ticket closed")
	}

	status := input.Status
	if status == nil {
		snapshot := ticket.Status
		status = &snapshot
	}
	iteration := models.TicketIteration{
		IterationID: uuid.NewString(),
		TicketID:    ticket.TicketID,
		Username:    caller.Username,
		Timestamp:   s.now(),
		Status:      status,
		Comment:     input.Comment,
	}
	created, err := s.store.CreateIteration(ctx, iteration)
	if err != nil {
		return models.TicketIteration{}, storeError("create iteration", err)
	}
	return created, nil
}

func (s *Service) ListIterations(ctx context.Context) ([]models.TicketIteration, error) {
	iterations, err := s.store.ListIterations(ctx)
	if err != nil {
		return nil, storeError("list iterations", err)
	}
	return iterations, nil
}

func (s *Service) ListTicketIterations(ctx context.Context, ticketID string) ([]models.TicketIteration, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	iterations, err := s.store.ListIterationsByTicket(ctx, ticket.TicketID)
	if err != nil {
		return nil, storeError("list ticket iterations", err)
	}
	return iterations, nil
}

func (s *Service) GetIteration(ctx context.Context, iterationID string) (models.TicketIteration, error) {
	if !isValidUUID(iterationID) {
		return models.TicketIteration{}, newError(ErrNotFound, "ticket iteration not found")
	}
	iteration, err := s.store.GetIteration(ctx, iterationID)
	if err != nil {
		return models.TicketIteration{}, storeError("get iteration", err)
	}
	return iteration, nil
}

// UpdateIteration edits the comment or status snapshot. Ticket, author and
// timestamp never change.
func (s *Service) UpdateIteration(ctx context.Context, iterationID string, patch IterationPatch) (models.TicketIteration, error) {
	iteration, err := s.GetIteration(ctx, iterationID)
	if err != nil {
		return models.TicketIteration{}, err
	}
	ticket, err := s.loadTicket(ctx, iteration.TicketID)
	if err != nil {
		return models.TicketIteration{}, err
	}
	if ticket.IsClosed() {
		return models.TicketIteration{}, newError(ErrConflict, "ticket closed")
	}

	patch.Comment = trimmed(patch.Comment)
	patch.Status = trimmed(patch.Status)
	if patch.Comment != nil {
		if *patch.Comment == "" {
			return models.TicketIteration{}, newError(ErrValidation, "comment is required")
		}
		iteration.Comment = *patch.Comment
	}
	if patch.Status != nil {
		if err := validateIterationStatus(patch.Status); err != nil {
			return models.TicketIteration{}, err
		}
		iteration.Status = patch.Status
	}

	updated, err := s.store.UpdateIteration(ctx, iteration)
	if err != nil {
		return models.TicketIteration{}, storeError("update iteration", err)
	}
	return updated, nil
}

func (s *Service) RemoveIteration(ctx context.Context, iterationID string) error {
	if !isValidUUID(iterationID) {
		return newError(ErrNotFound, "ticket iteration not found")
	}
	if err := s.store.DeleteIteration(ctx, iterationID); err != nil {
		return storeError("delete iteration", err)
	}
	return nil
}

func validateIterationStatus(status *string) error {
	if status != nil && !store.ValidStatus(*status) {
		return newError(ErrValidation, "status must be one of [NEW, In Progress, Dispatched, Closed, Cancelled]")
	}
	return nil
}
