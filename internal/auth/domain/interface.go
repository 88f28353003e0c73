package domain

//go:generate mockgen -destination=../../mocks/mock_repository.go -package=mocks github.com/atreidesdev/listopiaBackend/internal/auth/domain UserRepository,RefreshTokenRepository,LoginAttemptRepository

import (
	"context"
	"time"
)

// UserRepository is the persistence surface for user records. Lookup methods
// return (nil, nil) when no row matches.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	// GetByIdentifier matches either the username or the email column.
	GetByIdentifier(ctx context.Context, identifier string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, user *User) error
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
	UpdateEmail(ctx context.Context, id int64, email string) error
	UpdateUsername(ctx context.Context, id int64, username string) error
	UpdatePasswordHash(ctx context.Context, id int64, passwordHash string) error
	UpdateProfileName(ctx context.Context, id int64, profileName string) error
	UpdateRole(ctx context.Context, id int64, role string) error
	Deactivate(ctx context.Context, id int64) error
}

type RefreshTokenRepository interface {
	GetByToken(ctx context.Context, token string) (*RefreshToken, error)
	Store(ctx context.Context, rt *RefreshToken) error
	// Rotate deactivates the old token and stores its replacement in one
	// transaction. It fails if the old token is no longer active, so at most
	// one of several concurrent rotations can win.
	Rotate(ctx context.Context, oldToken string, replacement *RefreshToken) error
	Delete(ctx context.Context, token string) error
}

type LoginAttemptRepository interface {
	GetAttempt(ctx context.Context, ip string, userID int64) (*LoginAttempt, error)
	CreateAttempt(ctx context.Context, attempt *LoginAttempt) error
	UpdateAttempt(ctx context.Context, attempt *LoginAttempt) error
}
