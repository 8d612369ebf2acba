package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taskdeck/taskdeck-api/internal/api/shared"
	"github.com/taskdeck/taskdeck-api/internal/domain"
	"github.com/taskdeck/taskdeck-api/internal/service/auth"
	"github.com/taskdeck/taskdeck-api/internal/store"
)

// IdentityResolver resolves a session token to a user. Implemented by
// service.SessionService.
type IdentityResolver interface {
	CurrentIdentity(ctx context.Context, token string) (*domain.User, error)
}

// AuthMiddleware resolves the request identity from either the session
// cookie (browser clients) or a Bearer JWT (API clients), and guards
// routes that require one.
type AuthMiddleware struct {
	sessions   IdentityResolver
	jwtService auth.JWTService
	cookieName string
}

// NewAuthMiddleware creates a new AuthMiddleware.
func NewAuthMiddleware(
	sessions IdentityResolver,
	jwtService auth.JWTService,
	cookieName string,
) *AuthMiddleware {
	return &AuthMiddleware{
		sessions:   sessions,
		jwtService: jwtService,
		cookieName: cookieName,
	}
}

// Resolve adds the authenticated user's ID to the request context when a
// valid session cookie or Bearer token is present. It never rejects a
// request; the Require* guards below do that.
func (m *AuthMiddleware) Resolve(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID, ok := m.identify(r); ok {
			r = r.WithContext(shared.WithUserID(r.Context(), userID))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAPI rejects anonymous requests with a 401 JSON error.
func (m *AuthMiddleware) RequireAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := shared.UserID(r.Context()); !ok {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireWeb redirects anonymous requests to the login page.
func (m *AuthMiddleware) RequireWeb(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := shared.UserID(r.Context()); !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// identify tries the session cookie first, then the Authorization header.
func (m *AuthMiddleware) identify(r *http.Request) (int64, bool) {
	if cookie, err := r.Cookie(m.cookieName); err == nil && cookie.Value != "" {
		user, err := m.sessions.CurrentIdentity(r.Context(), cookie.Value)
		if err == nil {
			return user.ID, true
		}
		if !errors.Is(err, store.ErrSessionNotFound) {
			slog.Error("failed to resolve session", "error", err)
		}
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return 0, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return 0, false
	}

	claims, err := m.jwtService.ValidateToken(r.Context(), parts[1])
	if err != nil {
		if !errors.Is(err, auth.ErrExpiredToken) && !errors.Is(err, auth.ErrInvalidToken) {
			slog.Error("failed to validate token", "error", err)
		}
		return 0, false
	}

	return claims.UserID, true
}
