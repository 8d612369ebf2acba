package web_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck-api/internal/api/middleware"
	"github.com/taskdeck/taskdeck-api/internal/config"
	"github.com/taskdeck/taskdeck-api/internal/mocks"
	"github.com/taskdeck/taskdeck-api/internal/service"
	"github.com/taskdeck/taskdeck-api/internal/service/auth"
	"github.com/taskdeck/taskdeck-api/internal/web"
	"golang.org/x/crypto/bcrypt"
)

const testCookieName = "taskdeck_session"

// webTestEnv wires the full HTML stack against in-memory stores.
type webTestEnv struct {
	router      chi.Router
	userService *service.UserService
	taskService *service.TaskService
	sessions    *service.SessionService
	dbMock      sqlmock.Sqlmock
}

func newWebTestEnv(t *testing.T) *webTestEnv {
	t.Helper()

	log := slog.Default()
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)

	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	// The session service resolves users from the same store the user
	// service writes to.
	userStore := mocks.NewUserStore()
	userService := service.NewUserService(db, userStore, hasher, hasher, log)
	sessionService := service.NewSessionService(mocks.NewSessionStore(), userStore, 7*24*time.Hour, log)
	taskService := service.NewTaskService(mocks.NewTaskStore(), mocks.NewEventEmitter(), log)

	handler, err := web.NewHandler(userService, sessionService, taskService, testCookieName, false, log)
	require.NoError(t, err)

	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            "test-secret-key-that-is-at-least-32-chars",
		TokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)

	authMiddleware := middleware.NewAuthMiddleware(sessionService, jwtService, testCookieName)

	r := chi.NewRouter()
	r.Use(authMiddleware.Resolve)
	handler.Routes(r, authMiddleware.RequireWeb)

	return &webTestEnv{
		router:      r,
		userService: userService,
		taskService: taskService,
		sessions:    sessionService,
		dbMock:      dbMock,
	}
}

// login registers a user and returns their session cookie.
func (env *webTestEnv) login(t *testing.T, username string) (*http.Cookie, int64) {
	t.Helper()

	env.dbMock.ExpectBegin()
	env.dbMock.ExpectCommit()
	user, err := env.userService.Register(context.Background(), username, "hunter2hunter2")
	require.NoError(t, err)

	session, err := env.sessions.Login(context.Background(), user)
	require.NoError(t, err)

	return &http.Cookie{Name: testCookieName, Value: session.ID.String()}, user.ID
}

func (env *webTestEnv) get(t *testing.T, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env *webTestEnv) postForm(t *testing.T, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func TestWebIndex(t *testing.T) {
	t.Parallel()

	t.Run("anonymous visitor is redirected to login", func(t *testing.T) {
		t.Parallel()
		env := newWebTestEnv(t)

		w := env.get(t, "/", nil)
		require.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
	})

	t.Run("logged-in user sees only their tasks", func(t *testing.T) {
		t.Parallel()
		env := newWebTestEnv(t)
		cookie, userID := env.login(t, "alice")

		_, err := env.taskService.Create(context.Background(), userID, "walk the dog", "")
		require.NoError(t, err)
		_, err = env.taskService.Create(context.Background(), userID+1, "someone else's errand", "")
		require.NoError(t, err)

		w := env.get(t, "/", cookie)
		require.Equal(t, http.StatusOK, w.Code)

		body, err := io.ReadAll(w.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "walk the dog")
		assert.NotContains(t, string(body), "someone else's errand")
	})
}

func TestWebRegister(t *testing.T) {
	t.Parallel()

	t.Run("successful registration logs in and redirects home", func(t *testing.T) {
		t.Parallel()
		env := newWebTestEnv(t)
		env.dbMock.ExpectBegin()
		env.dbMock.ExpectCommit()

		w := env.postForm(t, "/register", url.Values{
			"username": {"alice"},
			"password": {"hunter2hunter2"},
		}, nil)

		require.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))

		var sessionCookie *http.Cookie
		for _, c := range w.Result().Cookies() {
			if c.Name == testCookieName {
				sessionCookie = c
			}
		}
		require.NotNil(t, sessionCookie)
		assert.NotEmpty(t, sessionCookie.Value)
	})

	t.Run("duplicate username re-renders the form with a flash", func(t *testing.T) {
		t.Parallel()
		env := newWebTestEnv(t)
		env.login(t, "alice")
		env.dbMock.ExpectBegin()
		env.dbMock.ExpectRollback()

		w := env.postForm(t, "/register", url.Values{
			"username": {"alice"},
			"password": {"another-password"},
		}, nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Location"))

		body, err := io.ReadAll(w.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "That username is already taken.")
	})
}

func TestWebLogin(t *testing.T) {
	t.Parallel()

	t.Run("valid credentials set a session cookie", func(t *testing.T) {
		t.Parallel()
		env := newWebTestEnv(t)
		env.login(t, "alice")

		w := env.postForm(t, "/login", url.Values{
			"username": {"alice"},
			"password": {"hunter2hunter2"},
		}, nil)

		require.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
	})

	t.Run("bad credentials re-render the form with a flash", func(t *testing.T) {
		t.Parallel()
		env := newWebTestEnv(t)
		env.login(t, "alice")

		w := env.postForm(t, "/login", url.Values{
			"username": {"alice"},
			"password": {"wrong"},
		}, nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Location"))

		body, err := io.ReadAll(w.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "Invalid username or password.")
	})
}

func TestWebLogout(t *testing.T) {
	t.Parallel()

	env := newWebTestEnv(t)
	cookie, _ := env.login(t, "alice")

	w := env.get(t, "/logout", cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	// The old token no longer resolves.
	w = env.get(t, "/", cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestWebAdd(t *testing.T) {
	t.Parallel()

	t.Run("creates a task and redirects home", func(t *testing.T) {
		t.Parallel()
		env := newWebTestEnv(t)
		cookie, userID := env.login(t, "alice")

		w := env.postForm(t, "/add", url.Values{
			"title":       {"buy milk"},
			"description": {"two liters"},
		}, cookie)

		require.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))

		tasks, err := env.taskService.ListByUser(context.Background(), userID)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "buy milk", tasks[0].Title)
	})

	t.Run("empty title redirects with flash instead of creating", func(t *testing.T) {
		t.Parallel()
		env := newWebTestEnv(t)
		cookie, userID := env.login(t, "alice")

		w := env.postForm(t, "/add", url.Values{"title": {""}}, cookie)
		require.Equal(t, http.StatusSeeOther, w.Code)

		tasks, err := env.taskService.ListByUser(context.Background(), userID)
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})
}

func TestWebCompleteAndDelete(t *testing.T) {
	t.Parallel()

	t.Run("complete toggles the task", func(t *testing.T) {
		t.Parallel()
		env := newWebTestEnv(t)
		cookie, userID := env.login(t, "alice")

		created, err := env.taskService.Create(context.Background(), userID, "buy milk", "")
		require.NoError(t, err)

		w := env.get(t, "/complete/"+idString(created.ID), cookie)
		require.Equal(t, http.StatusSeeOther, w.Code)

		toggled, err := env.taskService.Get(context.Background(), userID, created.ID)
		require.NoError(t, err)
		assert.True(t, toggled.Completed)
	})

	t.Run("foreign task is silently ignored", func(t *testing.T) {
		t.Parallel()
		env := newWebTestEnv(t)
		cookie, userID := env.login(t, "alice")

		foreign, err := env.taskService.Create(context.Background(), userID+1, "not mine", "")
		require.NoError(t, err)

		w := env.get(t, "/delete/"+idString(foreign.ID), cookie)
		require.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))

		// The task survives.
		still, err := env.taskService.Get(context.Background(), userID+1, foreign.ID)
		require.NoError(t, err)
		assert.Equal(t, "not mine", still.Title)
	})

	t.Run("delete removes the task", func(t *testing.T) {
		t.Parallel()
		env := newWebTestEnv(t)
		cookie, userID := env.login(t, "alice")

		created, err := env.taskService.Create(context.Background(), userID, "buy milk", "")
		require.NoError(t, err)

		w := env.get(t, "/delete/"+idString(created.ID), cookie)
		require.Equal(t, http.StatusSeeOther, w.Code)

		tasks, err := env.taskService.ListByUser(context.Background(), userID)
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})
}

func TestWebEdit(t *testing.T) {
	t.Parallel()

	t.Run("edit form shows the task", func(t *testing.T) {
		t.Parallel()
		env := newWebTestEnv(t)
		cookie, userID := env.login(t, "alice")

		created, err := env.taskService.Create(context.Background(), userID, "buy milk", "two liters")
		require.NoError(t, err)

		w := env.get(t, "/edit/"+idString(created.ID), cookie)
		require.Equal(t, http.StatusOK, w.Code)

		body, err := io.ReadAll(w.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "buy milk")
		assert.Contains(t, string(body), "two liters")
	})

	t.Run("posting the form updates the task", func(t *testing.T) {
		t.Parallel()
		env := newWebTestEnv(t)
		cookie, userID := env.login(t, "alice")

		created, err := env.taskService.Create(context.Background(), userID, "buy milk", "")
		require.NoError(t, err)

		w := env.postForm(t, "/edit/"+idString(created.ID), url.Values{
			"title":       {"buy oat milk"},
			"description": {"barista blend"},
		}, cookie)
		require.Equal(t, http.StatusSeeOther, w.Code)

		updated, err := env.taskService.Get(context.Background(), userID, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "buy oat milk", updated.Title)
		assert.Equal(t, "barista blend", updated.Description)
	})

	t.Run("foreign task redirects silently", func(t *testing.T) {
		t.Parallel()
		env := newWebTestEnv(t)
		cookie, userID := env.login(t, "alice")

		foreign, err := env.taskService.Create(context.Background(), userID+1, "not mine", "")
		require.NoError(t, err)

		w := env.get(t, "/edit/"+idString(foreign.ID), cookie)
		require.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
	})
}

func TestWebStats(t *testing.T) {
	t.Parallel()

	env := newWebTestEnv(t)
	cookie, userID := env.login(t, "alice")

	first, err := env.taskService.Create(context.Background(), userID, "first", "")
	require.NoError(t, err)
	_, err = env.taskService.Create(context.Background(), userID, "second", "")
	require.NoError(t, err)
	_, err = env.taskService.ToggleCompletion(context.Background(), userID, first.ID)
	require.NoError(t, err)

	w := env.get(t, "/stats", cookie)
	require.Equal(t, http.StatusOK, w.Code)

	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Total tasks: 2")
	assert.Contains(t, string(body), "Completed: 1")
	assert.Contains(t, string(body), "50.0%")
}

func idString(id int64) string {
	return strconv.FormatInt(id, 10)
}
