package store

import "errors"

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrTicketNotFound        = errors.New("ticket not found")
	ErrIterationNotFound     = errors.New("ticket iteration not found")
	ErrTicketClosed          = errors.New("ticket closed")
	ErrDuplicateUser         = errors.New("username or email already taken")
	ErrDuplicateRecordNumber = errors.New("record number already taken")
	ErrUserHasTickets        = errors.New("user still owns tickets")
)
