package service

import (
	"context"
	"errors"
	"strings"

	"ticketdesk/internal/auth"
	"ticketdesk/internal/models"
	"ticketdesk/internal/store"
)

type SigninInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Signin exchanges credentials for a bearer token.
func (s *Service) Signin(ctx context.Context, input SigninInput) (string, error) {
	input.Email = strings.TrimSpace(input.Email)
	if err := validateStruct(input); err != nil {
		return "", err
	}

	user, err := s.store.GetUserByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return "", newError(ErrNotFound, "user not found")
		}
		return "", storeError("signin", err)
	}
	if !auth.Authenticate(user, input.Password) {
		return "", newError(ErrUnauthorized, "invalid credentials")
	}
	return s.issueToken(user)
}

func (s *Service) issueToken(user models.User) (string, error) {
	token, err := s.tokens.Generate(user)
	if err != nil {
		return "", err
	}
	return token, nil
}

// Identify validates a bearer token. The role in the result is the one the
// token was issued with; admin checks re-read it through RequireAdmin.
func (s *Service) Identify(token string) (Identity, error) {
	if token == "" {
		return Identity{}, newError(ErrUnauthorized, "missing token")
	}
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return Identity{}, newError(ErrUnauthorized, "invalid token")
	}
	return identityFromClaims(claims), nil
}

// RequireAdmin loads the caller's current record; a demoted or deleted user
// is refused even while their token is still valid.
func (s *Service) RequireAdmin(ctx context.Context, caller Identity) (models.User, error) {
	if caller.ID == "" || !isValidUUID(caller.ID) {
		return models.User{}, newError(ErrForbidden, "admin role required")
	}
	user, err := s.store.GetUser(ctx, caller.ID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return models.User{}, newError(ErrForbidden, "admin role required")
		}
		return models.User{}, storeError("load caller", err)
	}
	if !user.IsAdmin() {
		return models.User{}, newError(ErrForbidden, "admin role required")
	}
	return user, nil
}

// RequireSameID passes when the caller owns the ticket. A missing ticket is
// reported before ownership is compared.
func (s *Service) RequireSameID(ctx context.Context, caller Identity, ticketID string) (models.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return models.Ticket{}, err
	}
	if caller.ID == "" || caller.ID != ticket.UserID {
		return models.Ticket{}, newError(ErrForbidden, "ticket belongs to another user")
	}
	return ticket, nil
}

func (s *Service) RequireOwnerOrAdmin(ctx context.Context, caller Identity, ticketID string) (models.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return models.Ticket{}, err
	}
	if caller.ID != "" && caller.ID == ticket.UserID {
		return ticket, nil
	}
	if _, err := s.RequireAdmin(ctx, caller); err != nil {
		return models.Ticket{}, denied(err, "ticket belongs to another user")
	}
	return ticket, nil
}

func (s *Service) RequireSelfOrAdmin(ctx context.Context, caller Identity, userID string) error {
	if caller.ID != "" && caller.ID == userID {
		return nil
	}
	if _, err := s.RequireAdmin(ctx, caller); err != nil {
		return denied(err, "access to another user denied")
	}
	return nil
}

// denied rewords a failed admin check for the gate that ran it. Errors other
// than ErrForbidden pass through unchanged.
func denied(err error, message string) error {
	if errors.Is(err, ErrForbidden) {
		return newError(ErrForbidden, "%s", message)
	}
	return err
}
