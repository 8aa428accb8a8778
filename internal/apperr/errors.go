// Package apperr defines the sentinel errors shared across services and handlers.
package apperr

import "errors"

var (
	// ErrNotFound means a resource id does not exist in the caller's collection.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists means a username is already taken (case-insensitive).
	ErrAlreadyExists = errors.New("already exists")
	// ErrUnknownUser means a message recipient could not be resolved to a user.
	ErrUnknownUser = errors.New("unknown user")
	// ErrUnauthorized means the token or credentials were missing or invalid.
	ErrUnauthorized = errors.New("unauthorized")
)
