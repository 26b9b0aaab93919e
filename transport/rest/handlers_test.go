package rest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gameverse-backend/internal/apperror"
	"github.com/rocketscienceinc/gameverse-backend/internal/entity"
)

type mockAuth struct {
	mock.Mock
}

func (that *mockAuth) Verify(token string) (entity.User, error) {
	args := that.Called(token)
	return args.Get(0).(entity.User), args.Error(1)
}

type mockProfiles struct {
	mock.Mock
}

func (that *mockProfiles) GetProfile(ctx context.Context, user entity.User) (*entity.Profile, error) {
	args := that.Called(ctx, user)
	profile, _ := args.Get(0).(*entity.Profile)
	return profile, args.Error(1)
}

func newTestRouter(t *testing.T) (http.Handler, *mockAuth, *mockProfiles) {
	t.Helper()

	auth := &mockAuth{}
	profiles := &mockProfiles{}
	t.Cleanup(func() {
		auth.AssertExpectations(t)
		profiles.AssertExpectations(t)
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewRouter(NewHandlers(logger, auth, profiles)), auth, profiles
}

func TestGetProfile(t *testing.T) {
	alice := entity.User{ID: "u1", Username: "alice"}

	t.Run("Owner of the token gets the profile", func(t *testing.T) {
		// Given: a valid token for alice
		router, auth, profiles := newTestRouter(t)

		auth.On("Verify", "good").Return(alice, nil).Once()
		profiles.On("GetProfile", mock.Anything, alice).Return(&entity.Profile{
			User:  alice,
			Stats: entity.Stats{Wins: 3, Losses: 1},
			Level: 1,
		}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
		req.Header.Set("Authorization", "Bearer good")
		rec := httptest.NewRecorder()

		// When: the profile is requested
		router.ServeHTTP(rec, req)

		// Then: it is returned as JSON
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"username":"alice"`)
		assert.Contains(t, rec.Body.String(), `"level":1`)
	})

	t.Run("Cookie is accepted", func(t *testing.T) {
		router, auth, profiles := newTestRouter(t)

		auth.On("Verify", "from-cookie").Return(alice, nil).Once()
		profiles.On("GetProfile", mock.Anything, alice).Return(&entity.Profile{User: alice}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
		req.AddCookie(&http.Cookie{Name: tokenCookieName, Value: "from-cookie"})
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Missing token is unauthorized", func(t *testing.T) {
		router, _, _ := newTestRouter(t)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/profile", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Invalid token is unauthorized", func(t *testing.T) {
		router, auth, _ := newTestRouter(t)

		auth.On("Verify", "forged").Return(entity.User{}, apperror.ErrInvalidCredential).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
		req.Header.Set("Authorization", "Bearer forged")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"invalid token"}`, rec.Body.String())
	})

	t.Run("Storage failure is a server error", func(t *testing.T) {
		router, auth, profiles := newTestRouter(t)

		auth.On("Verify", "good").Return(alice, nil).Once()
		profiles.On("GetProfile", mock.Anything, alice).Return(nil, errors.New("redis down")).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
		req.Header.Set("Authorization", "Bearer good")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestPing(t *testing.T) {
	router, _, _ := newTestRouter(t)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}
