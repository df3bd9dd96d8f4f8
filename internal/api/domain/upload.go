package domain

import (
	"errors"
	"strings"
)

// Upload log statuses. An upload only ever moves forward:
// pending/processing -> completed or failed.
const (
	UploadStatusPending    = "pending"
	UploadStatusProcessing = "processing"
	UploadStatusCompleted  = "completed"
	UploadStatusFailed     = "failed"
)

var (
	// ErrUploadNotFound is returned when an upload log cannot be found
	ErrUploadNotFound = errors.New("upload log not found")

	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateEmail is returned when an email address is already registered
	ErrDuplicateEmail = errors.New("email already registered")
)

// ValidationError carries the itemized reasons a file or request was rejected
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// NewValidationError creates a ValidationError from a list of reasons
func NewValidationError(reasons []string) error {
	return &ValidationError{Errors: reasons}
}
