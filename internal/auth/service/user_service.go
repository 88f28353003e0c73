package service

import (
	"context"
	"regexp"
	"time"
	"unicode"

	"github.com/atreidesdev/listopiaBackend/internal/auth/domain"
	"github.com/atreidesdev/listopiaBackend/internal/auth/dto"
	autherror "github.com/atreidesdev/listopiaBackend/internal/errors"
	"github.com/atreidesdev/listopiaBackend/pkg/constant"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type UserService struct {
	users    domain.UserRepository
	tokens   domain.RefreshTokenRepository
	tracker  *AttemptTracker
	tokenSvc TokenGenerator
}

func NewUserService(users domain.UserRepository, tokens domain.RefreshTokenRepository,
	tracker *AttemptTracker, tokenSvc TokenGenerator) *UserService {
	return &UserService{
		users:    users,
		tokens:   tokens,
		tracker:  tracker,
		tokenSvc: tokenSvc,
	}
}

// Login authenticates the submitted identifier and password and mints a token
// pair. The lockout gate runs before the password check; a failure is always
// reported as invalid credentials so callers cannot probe which accounts
// exist.
func (s *UserService) Login(ctx context.Context, input dto.LoginInput) (*dto.TokenResponse, error) {
	// Lockout state is keyed by (IP, user), so the gate first resolves the
	// identifier to a user. An unknown identifier cannot be locked out.
	known, err := s.users.GetByIdentifier(ctx, input.Identifier)
	if err != nil {
		return nil, err
	}
	if known != nil {
		minutes, err := s.tracker.Remaining(ctx, input.IPAddress, known.ID)
		if err != nil {
			return nil, err
		}
		if minutes > 0 {
			return nil, &autherror.LockoutError{MinutesRemaining: minutes}
		}
	}

	user, err := s.validate(ctx, input.Identifier, input.Password)
	if err != nil {
		return nil, err
	}
	if user == nil {
		if known != nil {
			if err := s.tracker.RecordFailure(ctx, input.IPAddress, known.ID); err != nil {
				return nil, err
			}
		}
		return nil, autherror.ErrInvalidCredentials
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID, time.Now()); err != nil {
		return nil, err
	}
	if err := s.tracker.RecordSuccess(ctx, input.IPAddress, user.ID); err != nil {
		return nil, err
	}

	return s.issue(ctx, user)
}

// validate compares the submitted password against the stored hash. A wrong
// password or unknown email yields (nil, nil), never an error; translating
// absence into an authentication failure is the caller's job.
func (s *UserService) validate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil
	}
	return user, nil
}

func (s *UserService) issue(ctx context.Context, user *domain.User) (*dto.TokenResponse, error) {
	accessToken, err := s.tokenSvc.Generate(user)
	if err != nil {
		return nil, err
	}

	refresh := &domain.RefreshToken{
		UserID:    user.ID,
		Token:     s.tokenSvc.NewRefreshToken(),
		ExpiresAt: time.Now().Add(s.tokenSvc.RefreshTokenTTL()),
		Active:    true,
	}
	if err := s.tokens.Store(ctx, refresh); err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refresh.Token,
	}, nil
}

// Refresh rotates a refresh token: the old one is deactivated and a new pair
// is issued. Reusing an already-rotated token fails the active check inside
// Rotate, so concurrent calls with the same token produce at most one winner.
func (s *UserService) Refresh(ctx context.Context, input dto.RefreshInput) (*dto.TokenResponse, error) {
	token, err := s.tokens.GetByToken(ctx, input.RefreshToken)
	if err != nil {
		return nil, err
	}
	if token == nil || !token.Active || time.Now().After(token.ExpiresAt) {
		return nil, autherror.ErrRefreshTokenInvalid
	}

	replacement := &domain.RefreshToken{
		UserID:    token.UserID,
		Token:     s.tokenSvc.NewRefreshToken(),
		ExpiresAt: time.Now().Add(s.tokenSvc.RefreshTokenTTL()),
		Active:    true,
	}
	if err := s.tokens.Rotate(ctx, token.Token, replacement); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, autherror.ErrUserNotFound
	}

	accessToken, err := s.tokenSvc.Generate(user)
	if err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: replacement.Token,
	}, nil
}

// Logout deletes the caller's refresh token outright. Unlike rotation this is
// a hard delete, not a deactivation.
func (s *UserService) Logout(ctx context.Context, userID int64, refreshToken string) error {
	token, err := s.tokens.GetByToken(ctx, refreshToken)
	if err != nil {
		return err
	}
	if token == nil || token.UserID != userID {
		return autherror.ErrRefreshTokenInvalid
	}

	return s.tokens.Delete(ctx, refreshToken)
}

// Register validates the submitted fields, creates the account and performs a
// normal login with the new credentials to produce the initial token pair.
func (s *UserService) Register(ctx context.Context, input dto.RegisterInput) (*dto.TokenResponse, error) {
	if input.Email == "" || input.Password == "" || input.Username == "" {
		return nil, autherror.ErrAllFieldsRequired
	}
	if !emailPattern.MatchString(input.Email) {
		return nil, autherror.ErrInvalidEmail
	}
	if !validPassword(input.Password) {
		return nil, autherror.ErrWeakPassword
	}

	existing, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, autherror.ErrEmailTaken
	}

	existing, err = s.users.GetByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, autherror.ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	profileName := input.Username
	user := &domain.User{
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: string(hash),
		Role:         constant.DefaultUserRole,
		ProfileName:  &profileName,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.Login(ctx, dto.LoginInput{
		Identifier: input.Email,
		Password:   input.Password,
		IPAddress:  input.IPAddress,
	})
}

func validPassword(p string) bool {
	if len(p) < minPasswordLength {
		return false
	}
	var hasLower, hasUpper, hasDigit bool
	for _, r := range p {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasLower && hasUpper && hasDigit
}
