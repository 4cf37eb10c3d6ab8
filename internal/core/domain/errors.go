package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is the kind shared by every "no such resource" error.
var ErrNotFound = errors.New("not found")

var (
	ErrTaskNotFound = fmt.Errorf("task %w", ErrNotFound)
	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)
)

// ErrReferenceNotFound means a mandatory user reference of a task (author or
// assignee) points to a user that does not exist.
var ErrReferenceNotFound = errors.New("referenced user not found")

var ErrValidation = errors.New("validation failed")

var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrAuthorizationDenied    = errors.New("access denied")
	ErrInvalidCredentials     = errors.New("invalid credentials")
)

var ErrUserExists = errors.New("user already exists")

// ErrVersionConflict is returned by a store when a task changed between the
// read and the write of a read-modify-write cycle.
var ErrVersionConflict = errors.New("task version conflict")

// Validationf builds an ErrValidation carrying a field-level message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
