package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rocketscienceinc/gameverse-backend/internal/entity"
	"github.com/rocketscienceinc/gameverse-backend/pkg/handlers"
)

const tokenCookieName = "auth_token"

type Handlers interface {
	GetProfile(w http.ResponseWriter, r *http.Request)
}

type authService interface {
	Verify(token string) (entity.User, error)
}

type profileService interface {
	GetProfile(ctx context.Context, user entity.User) (*entity.Profile, error)
}

type restHandlers struct {
	logger   *slog.Logger
	auth     authService
	profiles profileService
}

func NewHandlers(logger *slog.Logger, auth authService, profiles profileService) Handlers {
	return &restHandlers{
		logger:   logger.With("component", "rest"),
		auth:     auth,
		profiles: profiles,
	}
}

// GetProfile - stats, level, achievements and recent games of the token owner.
func (that *restHandlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "GetProfile")

	token := bearerToken(r)
	if token == "" {
		handlers.WriteError(w, http.StatusUnauthorized, "missing token")
		return
	}

	user, err := that.auth.Verify(token)
	if err != nil {
		log.Info("rejected token", "error", err)
		handlers.WriteError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	profile, err := that.profiles.GetProfile(r.Context(), user)
	if err != nil {
		log.Error("failed to load profile", "userID", user.ID, "error", err)
		handlers.WriteError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	handlers.WriteJSON(w, http.StatusOK, profile)
}

func bearerToken(r *http.Request) string {
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}

	if cookie, err := r.Cookie(tokenCookieName); err == nil {
		return cookie.Value
	}

	return ""
}
