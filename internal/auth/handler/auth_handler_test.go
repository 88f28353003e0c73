package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/atreidesdev/listopiaBackend/internal/auth/domain"
	"github.com/atreidesdev/listopiaBackend/internal/auth/handler"
	"github.com/atreidesdev/listopiaBackend/internal/auth/service"
	"github.com/atreidesdev/listopiaBackend/internal/mocks"
	"github.com/gofiber/fiber/v2"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	app      *fiber.App
	users    *mocks.MockUserRepository
	tokens   *mocks.MockRefreshTokenRepository
	attempts *mocks.MockLoginAttemptRepository
	tokenSvc *service.TokenService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	f := &fixture{
		users:    mocks.NewMockUserRepository(ctrl),
		tokens:   mocks.NewMockRefreshTokenRepository(ctrl),
		attempts: mocks.NewMockLoginAttemptRepository(ctrl),
		tokenSvc: service.NewTokenService("test-secret", 60, 30),
	}

	tracker := service.NewAttemptTracker(f.attempts)
	userService := service.NewUserService(f.users, f.tokens, tracker, f.tokenSvc)
	h := handler.NewAuthHandler(userService, f.tokenSvc)

	f.app = fiber.New()
	handler.RegisterRoutes(f.app, h)
	return f
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]string {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func testUser(t *testing.T) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("Abcdef12"), bcrypt.DefaultCost)
	require.NoError(t, err)
	return &domain.User{
		ID:           7,
		Email:        "reader@example.com",
		Username:     "reader",
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		Active:       true,
	}
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("valid credentials", func(t *testing.T) {
		f := newFixture(t)
		user := testUser(t)

		f.users.EXPECT().GetByIdentifier(gomock.Any(), "reader").Return(user, nil)
		f.attempts.EXPECT().GetAttempt(gomock.Any(), gomock.Any(), int64(7)).Return(nil, nil).Times(2)
		f.users.EXPECT().GetByEmail(gomock.Any(), "reader").Return(user, nil)
		f.users.EXPECT().UpdateLastLogin(gomock.Any(), int64(7), gomock.Any()).Return(nil)
		f.tokens.EXPECT().Store(gomock.Any(), gomock.Any()).Return(nil)

		resp, err := f.app.Test(jsonRequest(t, http.MethodPost, "/auth/login", fiber.Map{
			"identifier": "reader",
			"password":   "Abcdef12",
		}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.NotEmpty(t, body["access_token"])
		assert.NotEmpty(t, body["refresh_token"])
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newFixture(t)
		user := testUser(t)

		f.users.EXPECT().GetByIdentifier(gomock.Any(), "reader").Return(user, nil)
		f.attempts.EXPECT().GetAttempt(gomock.Any(), gomock.Any(), int64(7)).Return(nil, nil).Times(2)
		f.users.EXPECT().GetByEmail(gomock.Any(), "reader").Return(user, nil)
		f.attempts.EXPECT().CreateAttempt(gomock.Any(), gomock.Any()).Return(nil)

		resp, err := f.app.Test(jsonRequest(t, http.MethodPost, "/auth/login", fiber.Map{
			"identifier": "reader",
			"password":   "wrong",
		}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "invalid credentials", decodeBody(t, resp)["error"])
	})

	t.Run("locked out", func(t *testing.T) {
		f := newFixture(t)
		user := testUser(t)
		blockEnd := time.Now().Add(5 * time.Minute)

		f.users.EXPECT().GetByIdentifier(gomock.Any(), "reader").Return(user, nil)
		f.attempts.EXPECT().GetAttempt(gomock.Any(), gomock.Any(), int64(7)).Return(&domain.LoginAttempt{
			BlockEndTime:   &blockEnd,
			LockMultiplier: 2,
		}, nil)

		resp, err := f.app.Test(jsonRequest(t, http.MethodPost, "/auth/login", fiber.Map{
			"identifier": "reader",
			"password":   "Abcdef12",
		}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "too many failed attempts, try again in 5 minutes", decodeBody(t, resp)["error"])
	})

	t.Run("malformed body", func(t *testing.T) {
		f := newFixture(t)

		req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte("{broken")))
		req.Header.Set("Content-Type", "application/json")

		resp, err := f.app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("creates account and returns tokens", func(t *testing.T) {
		f := newFixture(t)

		var created *domain.User
		f.users.EXPECT().GetByEmail(gomock.Any(), "new@example.com").Return(nil, nil)
		f.users.EXPECT().GetByUsername(gomock.Any(), "newbie").Return(nil, nil)
		f.users.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, u *domain.User) error {
				u.ID = 9
				created = u
				return nil
			})
		f.users.EXPECT().GetByIdentifier(gomock.Any(), "new@example.com").DoAndReturn(
			func(_ context.Context, _ string) (*domain.User, error) { return created, nil })
		f.attempts.EXPECT().GetAttempt(gomock.Any(), gomock.Any(), int64(9)).Return(nil, nil).Times(2)
		f.users.EXPECT().GetByEmail(gomock.Any(), "new@example.com").DoAndReturn(
			func(_ context.Context, _ string) (*domain.User, error) { return created, nil })
		f.users.EXPECT().UpdateLastLogin(gomock.Any(), int64(9), gomock.Any()).Return(nil)
		f.tokens.EXPECT().Store(gomock.Any(), gomock.Any()).Return(nil)

		resp, err := f.app.Test(jsonRequest(t, http.MethodPost, "/auth/register", fiber.Map{
			"email":    "new@example.com",
			"username": "newbie",
			"password": "Abcdef12",
		}), 5000)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.NotEmpty(t, body["access_token"])
		assert.NotEmpty(t, body["refresh_token"])
	})

	t.Run("weak password", func(t *testing.T) {
		f := newFixture(t)

		resp, err := f.app.Test(jsonRequest(t, http.MethodPost, "/auth/register", fiber.Map{
			"email":    "new@example.com",
			"username": "newbie",
			"password": "abcdefgh",
		}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("email taken", func(t *testing.T) {
		f := newFixture(t)

		f.users.EXPECT().GetByEmail(gomock.Any(), "new@example.com").Return(&domain.User{ID: 1}, nil)

		resp, err := f.app.Test(jsonRequest(t, http.MethodPost, "/auth/register", fiber.Map{
			"email":    "new@example.com",
			"username": "newbie",
			"password": "Abcdef12",
		}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
		assert.Equal(t, "email already in use", decodeBody(t, resp)["error"])
	})
}

func TestAuthHandler_Refresh(t *testing.T) {
	t.Run("rotates a valid token", func(t *testing.T) {
		f := newFixture(t)
		user := testUser(t)

		stored := &domain.RefreshToken{
			UserID: 7, Token: "old-token", ExpiresAt: time.Now().Add(time.Hour), Active: true,
		}
		f.tokens.EXPECT().GetByToken(gomock.Any(), "old-token").Return(stored, nil)
		f.tokens.EXPECT().Rotate(gomock.Any(), "old-token", gomock.Any()).Return(nil)
		f.users.EXPECT().GetByID(gomock.Any(), int64(7)).Return(user, nil)

		resp, err := f.app.Test(jsonRequest(t, http.MethodPost, "/auth/refresh-token", fiber.Map{
			"refresh_token": "old-token",
		}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.NotEmpty(t, body["access_token"])
		assert.NotEqual(t, "old-token", body["refresh_token"])
	})

	t.Run("unknown token", func(t *testing.T) {
		f := newFixture(t)

		f.tokens.EXPECT().GetByToken(gomock.Any(), "missing").Return(nil, nil)

		resp, err := f.app.Test(jsonRequest(t, http.MethodPost, "/auth/refresh-token", fiber.Map{
			"refresh_token": "missing",
		}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "invalid or expired refresh token", decodeBody(t, resp)["error"])
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	t.Run("without bearer token", func(t *testing.T) {
		f := newFixture(t)

		resp, err := f.app.Test(jsonRequest(t, http.MethodPost, "/auth/logout", fiber.Map{
			"refresh_token": "tok",
		}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("deletes the refresh token", func(t *testing.T) {
		f := newFixture(t)
		user := testUser(t)

		access, err := f.tokenSvc.Generate(user)
		require.NoError(t, err)

		f.tokens.EXPECT().GetByToken(gomock.Any(), "tok").Return(&domain.RefreshToken{UserID: 7, Token: "tok"}, nil)
		f.tokens.EXPECT().Delete(gomock.Any(), "tok").Return(nil)

		req := jsonRequest(t, http.MethodPost, "/auth/logout", fiber.Map{"refresh_token": "tok"})
		req.Header.Set("Authorization", "Bearer "+access)

		resp, err := f.app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "Logged out successfully", decodeBody(t, resp)["message"])
	})

	t.Run("someone else's refresh token", func(t *testing.T) {
		f := newFixture(t)
		user := testUser(t)

		access, err := f.tokenSvc.Generate(user)
		require.NoError(t, err)

		f.tokens.EXPECT().GetByToken(gomock.Any(), "tok").Return(&domain.RefreshToken{UserID: 8, Token: "tok"}, nil)

		req := jsonRequest(t, http.MethodPost, "/auth/logout", fiber.Map{"refresh_token": "tok"})
		req.Header.Set("Authorization", "Bearer "+access)

		resp, err := f.app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestLoginRateLimiter(t *testing.T) {
	f := newFixture(t)

	// Every request fails credential lookup; the limiter trips regardless of
	// the outcome of the attempts themselves.
	f.users.EXPECT().GetByIdentifier(gomock.Any(), "reader").Return(nil, nil).Times(10)
	f.users.EXPECT().GetByEmail(gomock.Any(), "reader").Return(nil, nil).Times(10)

	for i := 0; i < 10; i++ {
		resp, err := f.app.Test(jsonRequest(t, http.MethodPost, "/auth/login", fiber.Map{
			"identifier": "reader",
			"password":   "wrong",
		}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	}

	resp, err := f.app.Test(jsonRequest(t, http.MethodPost, "/auth/login", fiber.Map{
		"identifier": "reader",
		"password":   "wrong",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}
