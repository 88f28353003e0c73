package service

import (
	"context"
	"time"

	"github.com/atreidesdev/listopiaBackend/internal/auth/domain"
	"github.com/atreidesdev/listopiaBackend/internal/auth/dto"
	autherror "github.com/atreidesdev/listopiaBackend/internal/errors"
	"golang.org/x/crypto/bcrypt"
)

const profileCacheTTL = 15 * time.Minute

// ProfileCache is the read cache for public profiles. pkg/cache.Redis
// implements it.
type ProfileCache interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration)
	Del(ctx context.Context, keys ...string)
}

type ProfileService struct {
	users domain.UserRepository
	cache ProfileCache
}

func NewProfileService(users domain.UserRepository, cache ProfileCache) *ProfileService {
	return &ProfileService{users: users, cache: cache}
}

func profileKey(username string) string {
	return "profile:" + username
}

// Profile returns the public profile for a username, served from the read
// cache when possible.
func (s *ProfileService) Profile(ctx context.Context, username string) (*dto.ProfileOutput, error) {
	var out dto.ProfileOutput
	if s.cache.Get(ctx, profileKey(username), &out) {
		return &out, nil
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, autherror.ErrUserNotFound
	}

	out = dto.ProfileOutput{
		Username:    user.Username,
		ProfileName: user.ProfileName,
		AvatarPath:  user.AvatarPath,
	}
	s.cache.Set(ctx, profileKey(username), out, profileCacheTTL)

	return &out, nil
}

func (s *ProfileService) UpdateEmail(ctx context.Context, userID int64, email string) error {
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return autherror.ErrEmailTaken
	}

	return s.users.UpdateEmail(ctx, userID, email)
}

func (s *ProfileService) UpdateUsername(ctx context.Context, userID int64, username string) error {
	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		return autherror.ErrUsernameTaken
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return autherror.ErrUserNotFound
	}

	if err := s.users.UpdateUsername(ctx, userID, username); err != nil {
		return err
	}

	s.cache.Del(ctx, profileKey(user.Username), profileKey(username))
	return nil
}

// UpdatePassword verifies the current password before storing the new hash.
func (s *ProfileService) UpdatePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return autherror.ErrUserNotFound
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return autherror.ErrPasswordIncorrect
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.users.UpdatePasswordHash(ctx, userID, string(hash))
}

func (s *ProfileService) UpdateProfileName(ctx context.Context, userID int64, profileName string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return autherror.ErrUserNotFound
	}

	if err := s.users.UpdateProfileName(ctx, userID, profileName); err != nil {
		return err
	}

	s.cache.Del(ctx, profileKey(user.Username))
	return nil
}

func (s *ProfileService) SetRole(ctx context.Context, userID int64, role string) error {
	if !domain.ValidRole(role) {
		return autherror.ErrInvalidRole
	}
	return s.users.UpdateRole(ctx, userID, role)
}

func (s *ProfileService) Deactivate(ctx context.Context, userID int64) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return autherror.ErrUserNotFound
	}

	if err := s.users.Deactivate(ctx, userID); err != nil {
		return err
	}

	s.cache.Del(ctx, profileKey(user.Username))
	return nil
}
