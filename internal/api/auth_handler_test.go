package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck-api/internal/api"
	"github.com/taskdeck/taskdeck-api/internal/config"
	"github.com/taskdeck/taskdeck-api/internal/mocks"
	"github.com/taskdeck/taskdeck-api/internal/service"
	"github.com/taskdeck/taskdeck-api/internal/service/auth"
	"golang.org/x/crypto/bcrypt"
)

func newAuthHandler(t *testing.T) (*api.AuthHandler, *service.UserService, sqlmock.Sqlmock) {
	t.Helper()

	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	userService := service.NewUserService(db, mocks.NewUserStore(), hasher, hasher, slog.Default())

	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            "test-secret-key-that-is-at-least-32-chars",
		TokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)

	return api.NewAuthHandler(userService, jwtService, slog.Default()), userService, dbMock
}

// expectRegisterTx arms the mock database for one committed registration.
func expectRegisterTx(dbMock sqlmock.Sqlmock) {
	dbMock.ExpectBegin()
	dbMock.ExpectCommit()
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestAuthHandlerRegister(t *testing.T) {
	t.Parallel()

	t.Run("successful registration returns token", func(t *testing.T) {
		t.Parallel()
		handler, _, dbMock := newAuthHandler(t)
		expectRegisterTx(dbMock)

		w := postJSON(t, handler.Register, "/api/auth/register", api.RegisterRequest{
			Username: "alice",
			Password: "hunter2hunter2",
		})

		require.Equal(t, http.StatusCreated, w.Code)

		var resp api.AuthResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.NotZero(t, resp.UserID)
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("duplicate username", func(t *testing.T) {
		t.Parallel()
		handler, _, dbMock := newAuthHandler(t)
		expectRegisterTx(dbMock)
		dbMock.ExpectBegin()
		dbMock.ExpectRollback()

		w := postJSON(t, handler.Register, "/api/auth/register", api.RegisterRequest{
			Username: "alice",
			Password: "hunter2hunter2",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		w = postJSON(t, handler.Register, "/api/auth/register", api.RegisterRequest{
			Username: "alice",
			Password: "other-password",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		t.Parallel()
		handler, _, _ := newAuthHandler(t)

		w := postJSON(t, handler.Register, "/api/auth/register", api.RegisterRequest{
			Username: "alice",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()
		handler, _, _ := newAuthHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader([]byte("{")))
		w := httptest.NewRecorder()
		handler.Register(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthHandlerLogin(t *testing.T) {
	t.Parallel()

	t.Run("valid credentials", func(t *testing.T) {
		t.Parallel()
		handler, userService, dbMock := newAuthHandler(t)
		expectRegisterTx(dbMock)

		registered, err := userService.Register(context.Background(), "alice", "hunter2hunter2")
		require.NoError(t, err)

		w := postJSON(t, handler.Login, "/api/auth/login", api.LoginRequest{
			Username: "alice",
			Password: "hunter2hunter2",
		})

		require.Equal(t, http.StatusOK, w.Code)

		var resp api.AuthResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, registered.ID, resp.UserID)
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()
		handler, userService, dbMock := newAuthHandler(t)
		expectRegisterTx(dbMock)

		_, err := userService.Register(context.Background(), "alice", "hunter2hunter2")
		require.NoError(t, err)

		w := postJSON(t, handler.Login, "/api/auth/login", api.LoginRequest{
			Username: "alice",
			Password: "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown user gets the same response as wrong password", func(t *testing.T) {
		t.Parallel()
		handler, _, _ := newAuthHandler(t)

		w := postJSON(t, handler.Login, "/api/auth/login", api.LoginRequest{
			Username: "nobody",
			Password: "whatever",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		var resp map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, api.MsgInvalidCredentials, resp["error"])
	})
}
