package library

import "errors"

// Error taxonomy. Operations wrap these sentinels with context via %w so
// callers can discriminate with errors.Is while still getting a readable
// message.
var (
	// ErrValidation marks malformed or missing input the caller can fix.
	ErrValidation = errors.New("invalid input")
	// ErrNotFound marks a referenced id that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks an operation that would violate a state invariant,
	// such as borrowing an already-borrowed book or reusing a username.
	ErrConflict = errors.New("conflict")
	// ErrPermission marks an operation the caller's role is not granted.
	ErrPermission = errors.New("permission denied")
	// ErrInvalidCredentials is the generic authentication failure; it does
	// not distinguish unknown user from wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrCorruptStorage marks a data file that exists but cannot be parsed.
	// Fatal for the session.
	ErrCorruptStorage = errors.New("storage corrupt")
	// ErrNetwork marks a failed catalog-seeding fetch. Recoverable; no
	// state is changed.
	ErrNetwork = errors.New("network error")
)
