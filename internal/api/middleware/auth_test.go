package middleware_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck-api/internal/api/middleware"
	"github.com/taskdeck/taskdeck-api/internal/api/shared"
	"github.com/taskdeck/taskdeck-api/internal/config"
	"github.com/taskdeck/taskdeck-api/internal/domain"
	"github.com/taskdeck/taskdeck-api/internal/mocks"
	"github.com/taskdeck/taskdeck-api/internal/service"
	"github.com/taskdeck/taskdeck-api/internal/service/auth"
)

const testCookieName = "taskdeck_session"

type authTestEnv struct {
	middleware *middleware.AuthMiddleware
	sessions   *service.SessionService
	jwtService auth.JWTService
	userID     int64
}

func newAuthTestEnv(t *testing.T) *authTestEnv {
	t.Helper()

	userStore := mocks.NewUserStore()
	user := &domain.User{Username: "alice", HashedPassword: "hash"}
	require.NoError(t, userStore.Create(context.Background(), user))

	sessions := service.NewSessionService(mocks.NewSessionStore(), userStore, time.Hour, slog.Default())

	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            "test-secret-key-that-is-at-least-32-chars",
		TokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)

	return &authTestEnv{
		middleware: middleware.NewAuthMiddleware(sessions, jwtService, testCookieName),
		sessions:   sessions,
		jwtService: jwtService,
		userID:     user.ID,
	}
}

// identityProbe records the user ID the middleware resolved.
func identityProbe(got *int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID, ok := shared.UserID(r.Context()); ok {
			*got = userID
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddlewareResolve(t *testing.T) {
	t.Parallel()

	t.Run("session cookie resolves to user", func(t *testing.T) {
		t.Parallel()
		env := newAuthTestEnv(t)

		session, err := env.sessions.Login(context.Background(), &domain.User{ID: env.userID, Username: "alice", HashedPassword: "hash"})
		require.NoError(t, err)

		var got int64
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: testCookieName, Value: session.ID.String()})
		env.middleware.Resolve(identityProbe(&got)).ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, env.userID, got)
	})

	t.Run("bearer token resolves to user", func(t *testing.T) {
		t.Parallel()
		env := newAuthTestEnv(t)

		token, err := env.jwtService.GenerateToken(context.Background(), env.userID)
		require.NoError(t, err)

		var got int64
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		env.middleware.Resolve(identityProbe(&got)).ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, env.userID, got)
	})

	t.Run("no credentials leaves the request anonymous", func(t *testing.T) {
		t.Parallel()
		env := newAuthTestEnv(t)

		var got int64
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		env.middleware.Resolve(identityProbe(&got)).ServeHTTP(httptest.NewRecorder(), req)

		assert.Zero(t, got)
	})

	t.Run("garbage bearer token leaves the request anonymous", func(t *testing.T) {
		t.Parallel()
		env := newAuthTestEnv(t)

		var got int64
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer nonsense")
		env.middleware.Resolve(identityProbe(&got)).ServeHTTP(httptest.NewRecorder(), req)

		assert.Zero(t, got)
	})

	t.Run("malformed authorization header leaves the request anonymous", func(t *testing.T) {
		t.Parallel()
		env := newAuthTestEnv(t)

		var got int64
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		env.middleware.Resolve(identityProbe(&got)).ServeHTTP(httptest.NewRecorder(), req)

		assert.Zero(t, got)
	})
}

func TestAuthMiddlewareRequireAPI(t *testing.T) {
	t.Parallel()

	env := newAuthTestEnv(t)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("anonymous request gets 401", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
		w := httptest.NewRecorder()
		env.middleware.RequireAPI(next).ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	})

	t.Run("authenticated request passes", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
		req = req.WithContext(shared.WithUserID(req.Context(), env.userID))
		w := httptest.NewRecorder()
		env.middleware.RequireAPI(next).ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestAuthMiddlewareRequireWeb(t *testing.T) {
	t.Parallel()

	env := newAuthTestEnv(t)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("anonymous request is redirected to login", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		env.middleware.RequireWeb(next).ServeHTTP(w, req)
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
	})

	t.Run("authenticated request passes", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(shared.WithUserID(req.Context(), env.userID))
		w := httptest.NewRecorder()
		env.middleware.RequireWeb(next).ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
