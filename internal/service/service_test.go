package service

import (
	"context"
	"testing"
	"time"

	"ticketdesk/internal/auth"
	"ticketdesk/internal/models"
	"ticketdesk/internal/store"
	"ticketdesk/internal/store/memory"

	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 11, 8, 9, 30, 0, 0, time.UTC)

func newTestService(t *testing.T, st store.Store) *Service {
	t.Helper()
	tokens, err := auth.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)
	return New(st, tokens, Options{Now: func() time.Time { return fixedNow }})
}

func newMemoryService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	st := memory.NewStore()
	return newTestService(t, st), st
}

func mustRegister(t *testing.T, svc *Service, username string) (models.User, Identity) {
	t.Helper()
	user, _, err := svc.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	return user, identityFromUser(user)
}

func mustAdmin(t *testing.T, svc *Service, username string) (models.User, Identity) {
	t.Helper()
	user, err := svc.CreateWithRole(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret1",
	}, models.RoleAdmin)
	require.NoError(t, err)
	return user, identityFromUser(user)
}

func mustTicket(t *testing.T, svc *Service, userID string) models.Ticket {
	t.Helper()
	ticket, err := svc.CreateTicket(context.Background(), CreateTicketInput{
		Description: "printer on fire",
		Priority:    models.PriorityHigh,
		UserID:      userID,
	})
	require.NoError(t, err)
	return ticket
}

func strPtr(value string) *string {
	return &value
}

func identityFromUser(user models.User) Identity {
	return Identity{ID: user.UserID, Username: user.Username, Role: user.Role}
}
