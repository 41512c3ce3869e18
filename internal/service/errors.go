package service

import (
	"errors"
	"fmt"

	"ticketdesk/internal/store"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
)

// Error carries a client-facing message. errors.Is matches it against its
// Kind, one of the sentinels above.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// storeError turns store sentinels into service errors. Anything else is
// unexpected and gets wrapped with the failing action.
func storeError(action string, err error) error {
	switch {
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrTicketNotFound),
		errors.Is(err, store.ErrIterationNotFound):
		return newError(ErrNotFound, "%s", err.Error())
	case errors.Is(err, store.ErrTicketClosed),
		errors.Is(err, store.ErrDuplicateUser),
		errors.Is(err, store.ErrDuplicateRecordNumber),
		errors.Is(err, store.ErrUserHasTickets):
		return newError(ErrConflict, "%s", err.Error())
	default:
		return fmt.Errorf("%s: %w", action, err)
	}
}
