package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAllFieldsRequired   = errors.New("all fields are required")
	ErrInvalidEmail        = errors.New("invalid email format")
	ErrWeakPassword        = errors.New("password must be at least 8 characters long and include uppercase, lowercase, and numeric characters")
	ErrEmailTaken          = errors.New("email already in use")
	ErrUsernameTaken       = errors.New("username already in use")
	ErrRefreshTokenInvalid = errors.New("invalid or expired refresh token")
	ErrUserNotFound        = errors.New("user not found")
	ErrPasswordIncorrect   = errors.New("current password is incorrect")
	ErrInvalidRole         = errors.New("invalid role")
)

// LockoutError rejects a login while a lockout window for the (IP, user) pair
// is still running.
type LockoutError struct {
	MinutesRemaining int
}

func (e *LockoutError) Error() string {
	return fmt.Sprintf("too many failed attempts, try again in %d minutes", e.MinutesRemaining)
}
