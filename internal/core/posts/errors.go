package posts

import (
	"errors"
	"fmt"
)

// Sentinel errors for common post operations
var (
	// ErrNotFound is returned when a post is not found by id
	ErrNotFound = errors.New("post not found")

	// ErrInactive is returned when a comment or reaction targets an expired post
	ErrInactive = errors.New("the post is expired, you cannot interact with it")

	// ErrNotCommentable is returned when a comment targets another comment
	ErrNotCommentable = errors.New("comments cannot be commented on")
)

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error (%s): %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsValidationError checks if error is a validation error
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}

// IsNotFound checks if error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
