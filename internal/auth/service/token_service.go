package service

//go:generate mockgen -destination=../../mocks/mock_token_generator.go -package=mocks github.com/atreidesdev/listopiaBackend/internal/auth/service TokenGenerator

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/atreidesdev/listopiaBackend/internal/auth/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenGenerator interface {
	Generate(user *domain.User) (string, error)
	Verify(tokenString string) (*AccessClaims, error)
	NewRefreshToken() string
	RefreshTokenTTL() time.Duration
}

// AccessClaims is the payload of a signed access token. Avatar and profile
// name are optional and omitted from the token when the user has none.
type AccessClaims struct {
	jwt.RegisteredClaims
	UserID      int64   `json:"id"`
	Username    string  `json:"username"`
	Role        string  `json:"role"`
	Avatar      *string `json:"avatar,omitempty"`
	ProfileName *string `json:"profile_name,omitempty"`
}

type TokenService struct {
	Secret             string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

func NewTokenService(secret string, accessMinutes, refreshDays int) *TokenService {
	return &TokenService{
		Secret:             secret,
		AccessTokenExpiry:  time.Duration(accessMinutes) * time.Minute,
		RefreshTokenExpiry: time.Duration(refreshDays) * 24 * time.Hour,
	}
}

// Generate signs an access token carrying the user's identity claims.
func (ts *TokenService) Generate(user *domain.User) (string, error) {
	now := time.Now()

	claims := AccessClaims{
		UserID:      user.ID,
		Username:    user.Username,
		Role:        user.Role,
		Avatar:      user.AvatarPath,
		ProfileName: user.ProfileName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(ts.Secret))
}

// Verify parses and validates the given access token string.
func (ts *TokenService) Verify(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Ensure the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(ts.Secret), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

// NewRefreshToken returns an opaque random token. Refresh tokens carry no
// claims; they are only ever compared against the stored value.
func (ts *TokenService) NewRefreshToken() string {
	b := make([]byte, 32)
	rand.Read(b)
	return hex.EncodeToString(b)
}

func (ts *TokenService) RefreshTokenTTL() time.Duration {
	return ts.RefreshTokenExpiry
}
