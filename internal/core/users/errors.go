package users

import (
	"errors"
	"fmt"
)

// Sentinel errors for common user operations
var (
	// ErrUserNotFound is returned when a user lookup finds no matching record
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken is returned when signing up with an email that is already registered
	ErrEmailTaken = errors.New("email already in use")

	// ErrUserNameTaken is returned when signing up with a username that is already registered
	ErrUserNameTaken = errors.New("username already in use")

	// ErrInvalidCredentials is returned for an unknown email or a wrong password.
	// Both cases share one error so callers cannot probe for registered emails.
	ErrInvalidCredentials = errors.New("auth failed")
)

type InvalidEmailError struct {
	Email string
}

func (e *InvalidEmailError) Error() string {
	return fmt.Sprintf("invalid email address: %q", e.Email)
}

type InvalidUserNameError struct {
	UserName string
	Reason   string
}

func (e *InvalidUserNameError) Error() string {
	return fmt.Sprintf("invalid username %q: %s", e.UserName, e.Reason)
}

type WeakPasswordError struct {
	Reason string
}

func (e *WeakPasswordError) Error() string {
	return fmt.Sprintf("password does not meet strength requirements: %s", e.Reason)
}

// IsConflict checks if an error reports a duplicate email or username
func IsConflict(err error) bool {
	return errors.Is(err, ErrEmailTaken) || errors.Is(err, ErrUserNameTaken)
}

// IsValidationError checks if an error reports malformed signup input
func IsValidationError(err error) bool {
	var emailErr *InvalidEmailError
	var nameErr *InvalidUserNameError
	var pwErr *WeakPasswordError
	return errors.As(err, &emailErr) || errors.As(err, &nameErr) || errors.As(err, &pwErr)
}
