package postgres

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"ticketdesk/internal/models"
	"ticketdesk/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func TestTicketRoundTrip(t *testing.T) {
	ctx := context.Background()
	st, _, cleanup := setupTestStore(t, ctx)
	t.Cleanup(cleanup)

	owner := createUser(t, ctx, st, "alice")
	ticket := createTicket(t, ctx, st, owner.UserID, "20241108-0000001")

	got, err := st.GetTicket(ctx, ticket.TicketID)
	if err != nil {
		t.Fatalf("get ticket: %v", err)
	}
	if got.Description != ticket.Description || got.Status != models.StatusNew {
		t.Fatalf("unexpected ticket %+v", got)
	}
	if got.Resolution != nil {
		t.Fatalf("expected empty resolution, got %q", *got.Resolution)
	}

	latest, ok, err := st.LatestRecordNumber(ctx, "20241108")
	if err != nil {
		t.Fatalf("latest record number: %v", err)
	}
	if !ok || latest != "20241108-0000001" {
		t.Fatalf("expected 20241108-0000001, got %q (found=%v)", latest, ok)
	}
	if _, ok, _ := st.LatestRecordNumber(ctx, "20241109"); ok {
		t.Fatalf("expected no record number for another day")
	}
}

func TestDuplicateRecordNumber(t *testing.T) {
	ctx := context.Background()
	st, _, cleanup := setupTestStore(t, ctx)
	t.Cleanup(cleanup)

	owner := createUser(t, ctx, st, "alice")
	createTicket(t, ctx, st, owner.UserID, "20241108-0000001")

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := st.CreateTicket(ctx, newTicket(owner.UserID, "20241108-0000002"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var created int
	for err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, store.ErrDuplicateRecordNumber):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if created != 1 {
		t.Fatalf("expected exactly one insert to win, got %d", created)
	}
}

func TestClosedTicketRejectsWrites(t *testing.T) {
	ctx := context.Background()
	st, _, cleanup := setupTestStore(t, ctx)
	t.Cleanup(cleanup)

	owner := createUser(t, ctx, st, "alice")
	ticket := createTicket(t, ctx, st, owner.UserID, "20241108-0000001")
	iteration, err := st.CreateIteration(ctx, newIteration(ticket.TicketID, "first look"))
	if err != nil {
		t.Fatalf("create iteration: %v", err)
	}

	ticket.Status = models.StatusClosed
	if _, err := st.UpdateTicket(ctx, ticket); err != nil {
		t.Fatalf("close ticket: %v", err)
	}

	ticket.Description = "changed"
	if _, err := st.UpdateTicket(ctx, ticket); !errors.Is(err, store.ErrTicketClosed) {
		t.Fatalf("expected ErrTicketClosed on update, got %v", err)
	}
	if _, err := st.CreateIteration(ctx, newIteration(ticket.TicketID, "too late")); !errors.Is(err, store.ErrTicketClosed) {
		t.Fatalf("expected ErrTicketClosed on iteration create, got %v", err)
	}
	iteration.Comment = "edited"
	if _, err := st.UpdateIteration(ctx, iteration); !errors.Is(err, store.ErrTicketClosed) {
		t.Fatalf("expected ErrTicketClosed on iteration update, got %v", err)
	}

	stored, err := st.GetIteration(ctx, iteration.IterationID)
	if err != nil {
		t.Fatalf("get iteration: %v", err)
	}
	if stored.Comment != "first look" {
		t.Fatalf("iteration mutated: %q", stored.Comment)
	}
}

func TestIterationMissingTicket(t *testing.T) {
	ctx := context.Background()
	st, _, cleanup := setupTestStore(t, ctx)
	t.Cleanup(cleanup)

	if _, err := st.CreateIteration(ctx, newIteration(uuid.NewString(), "orphan")); !errors.Is(err, store.ErrTicketNotFound) {
		t.Fatalf("expected ErrTicketNotFound, got %v", err)
	}
}

func TestDeleteTicketCascades(t *testing.T) {
	ctx := context.Background()
	st, pool, cleanup := setupTestStore(t, ctx)
	t.Cleanup(cleanup)

	owner := createUser(t, ctx, st, "alice")
	ticket := createTicket(t, ctx, st, owner.UserID, "20241108-0000001")
	if _, err := st.CreateIteration(ctx, newIteration(ticket.TicketID, "note")); err != nil {
		t.Fatalf("create iteration: %v", err)
	}

	if err := st.DeleteTicket(ctx, ticket.TicketID); err != nil {
		t.Fatalf("delete ticket: %v", err)
	}
	if err := st.DeleteTicket(ctx, ticket.TicketID); !errors.Is(err, store.ErrTicketNotFound) {
		t.Fatalf("expected ErrTicketNotFound on second delete, got %v", err)
	}

	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM ticket_iterations`).Scan(&count); err != nil {
		t.Fatalf("count iterations: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected iterations to be removed, got %d", count)
	}
}

func TestUserConstraints(t *testing.T) {
	ctx := context.Background()
	st, _, cleanup := setupTestStore(t, ctx)
	t.Cleanup(cleanup)

	alice := createUser(t, ctx, st, "alice")
	dup := newUser("alice")
	if _, err := st.CreateUser(ctx, dup); !errors.Is(err, store.ErrDuplicateUser) {
		t.Fatalf("expected ErrDuplicateUser, got %v", err)
	}

	found, err := st.GetUserByEmail(ctx, "ALICE@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if found.UserID != alice.UserID {
		t.Fatalf("expected %s, got %s", alice.UserID, found.UserID)
	}

	createTicket(t, ctx, st, alice.UserID, "20241108-0000001")
	if err := st.DeleteUser(ctx, alice.UserID); !errors.Is(err, store.ErrUserHasTickets) {
		t.Fatalf("expected ErrUserHasTickets, got %v", err)
	}
	if err := st.DeleteUser(ctx, uuid.NewString()); !errors.Is(err, store.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func setupTestStore(t *testing.T, ctx context.Context) (*Store, *pgxpool.Pool, func()) {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		dsn = os.Getenv("DB_DSN")
	}
	if dsn == "" {
		t.Skip("TEST_DB_DSN or DB_DSN is required for integration tests")
	}

	schema := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := createSchema(ctx, dsn, schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}

	pool, err := newPoolWithSchema(ctx, dsn, schema)
	if err != nil {
		t.Fatalf("open pool: %v", err)
	}

	if err := Migrate(ctx, pool, "up"); err != nil {
		pool.Close()
		t.Fatalf("apply migrations: %v", err)
	}

	cleanup := func() {
		pool.Close()
		_ = dropSchema(context.Background(), dsn, schema)
	}
	return NewStore(pool), pool, cleanup
}

func createSchema(ctx context.Context, dsn, schema string) error {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)
	_, err = conn.Exec(ctx, "CREATE SCHEMA "+schema)
	return err
}

func dropSchema(ctx context.Context, dsn, schema string) error {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)
	_, err = conn.Exec(ctx, "DROP SCHEMA "+schema+" CASCADE")
	return err
}

func newPoolWithSchema(ctx context.Context, dsn, schema string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.ConnConfig.RuntimeParams["search_path"] = schema
	return pgxpool.NewWithConfig(ctx, cfg)
}

func newUser(username string) models.User {
	now := time.Now().UTC()
	return models.User{
		UserID:         uuid.NewString(),
		Username:       username,
		Email:          username + "@example.com",
		HashedPassword: "hash",
		Salt:           "salt",
		Role:           models.RoleUser,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func createUser(t *testing.T, ctx context.Context, st *Store, username string) models.User {
	t.Helper()
	user, err := st.CreateUser(ctx, newUser(username))
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func newTicket(userID, recordNumber string) models.Ticket {
	now := time.Now().UTC()
	return models.Ticket{
		TicketID:     uuid.NewString(),
		RecordNumber: recordNumber,
		Description:  "printer on fire",
		Priority:     models.PriorityHigh,
		UserID:       userID,
		Status:       models.StatusNew,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func createTicket(t *testing.T, ctx context.Context, st *Store, userID, recordNumber string) models.Ticket {
	t.Helper()
	ticket, err := st.CreateTicket(ctx, newTicket(userID, recordNumber))
	if err != nil {
		t.Fatalf("create ticket: %v", err)
	}
	return ticket
}

func newIteration(ticketID, comment string) models.TicketIteration {
	return models.TicketIteration{
		IterationID: uuid.NewString(),
		TicketID:    ticketID,
		Username:    "alice",
		Timestamp:   time.Now().UTC(),
		Comment:     comment,
	}
}
