package usecase

import "errors"

// Coordination errors surfaced to the transport layer. Handlers map these
// with errors.Is; anything else is treated as a store failure.
var (
	ErrValidation           = errors.New("invalid request")
	ErrUserNotFound         = errors.New("user not found")
	ErrAlertNotFound        = errors.New("alert not found")
	ErrAlreadyResolved      = errors.New("alert already resolved")
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyActive = errors.New("an active session already exists for this user")
	ErrNoActiveSession      = errors.New("no active session for this user")
	ErrSessionExpired       = errors.New("session has expired")
)
