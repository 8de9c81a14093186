package sessions

import "errors"

var (
	// ErrNotFound is returned when no session matches the identifier.
	ErrNotFound = errors.New("session not found")
	// ErrStorageUnavailable is returned when the backing store cannot
	// serve the request.
	ErrStorageUnavailable = errors.New("session storage unavailable")
	// ErrInvalidRecord is returned when a record offered for
	// persistence is missing required fields.
	ErrInvalidRecord = errors.New("invalid session record")
)
