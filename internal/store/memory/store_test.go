package memory

import (
	"context"
	"testing"
	"time"

	"ticketdesk/internal/models"
	"ticketdesk/internal/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ store.Store = (*Store)(nil)

func seedUser(t *testing.T, st *Store, username string) models.User {
	t.Helper()
	user, err := st.CreateUser(context.Background(), models.User{
		UserID:   uuid.NewString(),
		Username: username,
		Email:    username + "@example.com",
		Role:     models.RoleUser,
	})
	require.NoError(t, err)
	return user
}

func seedTicket(t *testing.T, st *Store, userID, recordNumber string) models.Ticket {
	t.Helper()
	now := time.Now().UTC()
	ticket, err := st.CreateTicket(context.Background(), models.Ticket{
		TicketID:     uuid.NewString(),
		RecordNumber: recordNumber,
		Description:  "vpn down",
		Priority:     models.PriorityMedium,
		UserID:       userID,
		Status:       models.StatusNew,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	require.NoError(t, err)
	return ticket
}

func TestUserUniqueness(t *testing.T) {
	ctx := context.Background()
	st := NewStore()
	alice := seedUser(t, st, "alice")

	_, err := st.CreateUser(ctx, models.User{UserID: uuid.NewString(), Username: "alice", Email: "other@example.com"})
	assert.ErrorIs(t, err, store.ErrDuplicateUser)

	_, err = st.CreateUser(ctx, models.User{UserID: uuid.NewString(), Username: "bob", Email: "ALICE@example.com"})
	assert.ErrorIs(t, err, store.ErrDuplicateUser)

	found, err := st.GetUserByEmail(ctx, "Alice@Example.com")
	require.NoError(t, err)
	assert.Equal(t, alice.UserID, found.UserID)

	alice.Username = "alice2"
	updated, err := st.UpdateUser(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "alice2", updated.Username)
}

func TestListsKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	st := NewStore()
	owner := seedUser(t, st, "alice")
	first := seedTicket(t, st, owner.UserID, "20241108-0000002")
	second := seedTicket(t, st, owner.UserID, "20241108-0000001")

	tickets, err := st.ListTickets(ctx)
	require.NoError(t, err)
	require.Len(t, tickets, 2)
	assert.Equal(t, first.TicketID, tickets[0].TicketID)
	assert.Equal(t, second.TicketID, tickets[1].TicketID)

	latest, ok, err := st.LatestRecordNumber(ctx, "20241108")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "20241108-0000002", latest)
}

func TestCreateTicketChecks(t *testing.T) {
	ctx := context.Background()
	st := NewStore()
	owner := seedUser(t, st, "alice")
	seedTicket(t, st, owner.UserID, "20241108-0000001")

	_, err := st.CreateTicket(ctx, models.Ticket{TicketID: uuid.NewString(), RecordNumber: "20241108-0000001", UserID: owner.UserID})
	assert.ErrorIs(t, err, store.ErrDuplicateRecordNumber)

	_, err = st.CreateTicket(ctx, models.Ticket{TicketID: uuid.NewString(), RecordNumber: "20241108-0000002", UserID: uuid.NewString()})
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestClosedTicketGuards(t *testing.T) {
	ctx := context.Background()
	st := NewStore()
	owner := seedUser(t, st, "alice")
	ticket := seedTicket(t, st, owner.UserID, "20241108-0000001")

	iteration, err := st.CreateIteration(ctx, models.TicketIteration{IterationID: uuid.NewString(), TicketID: ticket.TicketID, Comment: "looking"})
	require.NoError(t, err)

	ticket.Status = models.StatusClosed
	_, err = st.UpdateTicket(ctx, ticket)
	require.NoError(t, err)

	ticket.Description = "changed"
	_, err = st.UpdateTicket(ctx, ticket)
	assert.ErrorIs(t, err, store.ErrTicketClosed)

	_, err = st.CreateIteration(ctx, models.TicketIteration{IterationID: uuid.NewString(), TicketID: ticket.TicketID, Comment: "late"})
	assert.ErrorIs(t, err, store.ErrTicketClosed)

	iteration.Comment = "edited"
	_, err = st.UpdateIteration(ctx, iteration)
	assert.ErrorIs(t, err, store.ErrTicketClosed)

	stored, err := st.GetTicket(ctx, ticket.TicketID)
	require.NoError(t, err)
	assert.Equal(t, "vpn down", stored.Description)
}

func TestDeleteTicketRemovesIterations(t *testing.T) {
	ctx := context.Background()
	st := NewStore()
	owner := seedUser(t, st, "alice")
	doomed := seedTicket(t, st, owner.UserID, "20241108-0000001")
	kept := seedTicket(t, st, owner.UserID, "20241108-0000002")

	for _, ticketID := range []string{doomed.TicketID, kept.TicketID, doomed.TicketID} {
		_, err := st.CreateIteration(ctx, models.TicketIteration{IterationID: uuid.NewString(), TicketID: ticketID, Comment: "note"})
		require.NoError(t, err)
	}

	require.NoError(t, st.DeleteTicket(ctx, doomed.TicketID))
	assert.ErrorIs(t, st.DeleteTicket(ctx, doomed.TicketID), store.ErrTicketNotFound)

	iterations, err := st.ListIterations(ctx)
	require.NoError(t, err)
	require.Len(t, iterations, 1)
	assert.Equal(t, kept.TicketID, iterations[0].TicketID)

	_, ok, err := st.LatestRecordNumber(ctx, "20241108")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDeleteUserWithTickets(t *testing.T) {
	ctx := context.Background()
	st := NewStore()
	owner := seedUser(t, st, "alice")
	seedTicket(t, st, owner.UserID, "20241108-0000001")

	assert.ErrorIs(t, st.DeleteUser(ctx, owner.UserID), store.ErrUserHasTickets)
	assert.ErrorIs(t, st.DeleteUser(ctx, uuid.NewString()), store.ErrUserNotFound)
}
