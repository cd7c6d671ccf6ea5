package types

import "errors"

// Domain specific errors surfaced by services and mapped to HTTP statuses at
// the handler layer.
var (
	ErrNotFound        = errors.New("requested item not found")
	ErrConflict        = errors.New("item already exists or conflict")
	ErrUnauthenticated = errors.New("authentication required or invalid credentials")
	ErrForbidden       = errors.New("action forbidden")
	ErrBadRequest      = errors.New("bad request")
	ErrSlotUnavailable = errors.New("time slot not available")
)
