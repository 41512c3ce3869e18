package service

import (
	"io"
	"log/slog"
	"time"

	"ticketdesk/internal/auth"
	"ticketdesk/internal/store"
)

// Identity is the caller decoded from a bearer token.
type Identity struct {
	ID       string
	Username string
	Role     string
}

type Options struct {
	Now    func() time.Time
	Logger *slog.Logger
}

// Service holds the ticket lifecycle and authorization rules on top of a
// store. It is safe for concurrent use.
type Service struct {
	store  store.Store
	tokens *auth.TokenManager
	now    func() time.Time
	logger *slog.Logger
}

func New(st store.Store, tokens *auth.TokenManager, options Options) *Service {
	now := options.Now
	if now == nil {
		now = time.Now
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		store:  st,
		tokens: tokens,
		now:    func() time.Time { return now().UTC() },
		logger: logger,
	}
}

func identityFromClaims(claims *auth.Claims) Identity {
	return Identity{ID: claims.ID, Username: claims.Username, Role: claims.Role}
}
