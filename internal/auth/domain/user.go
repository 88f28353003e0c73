package domain

import "time"

const (
	RoleUser      = "user"
	RoleEditor    = "editor"
	RoleDeveloper = "developer"
	RoleAdmin     = "admin"
)

// ValidRole reports whether role is one of the defined user roles.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleEditor, RoleDeveloper, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           int64
	Email        string
	Username     string
	PasswordHash string
	Role         string
	AvatarPath   *string
	ProfileName  *string
	Active       bool
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type RefreshToken struct {
	ID        int64
	UserID    int64
	Token     string
	ExpiresAt time.Time
	Active    bool
	CreatedAt time.Time
}

// LoginAttempt tracks failed logins per (IP address, user) pair. A row is
// created lazily on the first failure and never deleted, so it doubles as an
// audit trail.
type LoginAttempt struct {
	ID              int64
	IPAddress       string
	UserID          int64
	AttemptCount    int
	LastAttemptTime time.Time
	BlockEndTime    *time.Time
	LockMultiplier  int
}
