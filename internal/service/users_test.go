package service

import (
	"context"
	"testing"

	"ticketdesk/internal/auth"
	"ticketdesk/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemoryService(t)

	user, token, err := svc.Register(ctx, RegisterInput{Username: "  alice ", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.True(t, auth.Authenticate(user, "secret1"))
	assert.Equal(t, fixedNow, user.CreatedAt)

	identity, err := svc.Identify(token)
	require.NoError(t, err)
	assert.Equal(t, user.UserID, identity.ID)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc, st := newMemoryService(t)
	mustRegister(t, svc, "alice")

	cases := []struct {
		name  string
		input RegisterInput
		kind  error
	}{
		{"short password", RegisterInput{Username: "bob", Email: "bob@example.com", Password: "12345"}, ErrValidation},
		{"bad email", RegisterInput{Username: "bob", Email: "bob-at-example", Password: "secret1"}, ErrValidation},
		{"missing username", RegisterInput{Email: "bob@example.com", Password: "secret1"}, ErrValidation},
		{"duplicate username", RegisterInput{Username: "alice", Email: "bob@example.com", Password: "secret1"}, ErrConflict},
		{"duplicate email", RegisterInput{Username: "bob", Email: "ALICE@example.com", Password: "secret1"}, ErrConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Register(ctx, tc.input)
			assert.ErrorIs(t, err, tc.kind)
		})
	}

	users, err := st.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemoryService(t)
	alice, aliceID := mustRegister(t, svc, "alice")

	updated, err := svc.UpdateUser(ctx, aliceID, alice.UserID, UserPatch{Email: strPtr("alice@corp.example"), Password: strPtr("secret2")})
	require.NoError(t, err)
	assert.Equal(t, "alice@corp.example", updated.Email)
	assert.True(t, auth.Authenticate(updated, "secret2"))
	assert.False(t, auth.Authenticate(updated, "secret1"))

	_, err = svc.UpdateUser(ctx, aliceID, alice.UserID, UserPatch{Role: strPtr(models.RoleAdmin)})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.UpdateUser(ctx, aliceID, alice.UserID, UserPatch{Password: strPtr("short")})
	assert.ErrorIs(t, err, ErrValidation)

	same, err := svc.UpdateUser(ctx, aliceID, alice.UserID, UserPatch{Role: strPtr(models.RoleUser)})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, same.Role)
	assert.True(t, auth.Authenticate(same, "secret2"))

	_, err = svc.UpdateUser(ctx, aliceID, uuid.NewString(), UserPatch{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMemoryService(t)
	alice, _ := mustRegister(t, svc, "alice")
	mustTicket(t, svc, alice.UserID)

	assert.ErrorIs(t, svc.RemoveUser(ctx, alice.UserID), ErrConflict)
	assert.ErrorIs(t, svc.RemoveUser(ctx, uuid.NewString()), ErrNotFound)
	assert.ErrorIs(t, svc.RemoveUser(ctx, "nope"), ErrNotFound)
}
