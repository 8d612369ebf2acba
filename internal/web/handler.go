// Package web implements the server-rendered HTML layer: registration and
// login forms, the task list with add/complete/edit/delete actions, and
// the stats page. Identity comes from the session cookie; anonymous
// requests to task pages are redirected to /login by the router's guard.
package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/taskdeck/taskdeck-api/internal/api/shared"
	"github.com/taskdeck/taskdeck-api/internal/domain"
	"github.com/taskdeck/taskdeck-api/internal/service"
	"github.com/taskdeck/taskdeck-api/internal/service/auth"
	"github.com/taskdeck/taskdeck-api/internal/store"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Handler serves the HTML pages.
type Handler struct {
	userService    *service.UserService
	sessionService *service.SessionService
	taskService    *service.TaskService
	templates      map[string]*template.Template
	cookieName     string
	cookieSecure   bool
	logger         *slog.Logger
}

// pageData is the payload passed to every template.
type pageData struct {
	UserID int64
	Flash  string
	Tasks  []*domain.Task
	Task   *domain.Task
	Stats  domain.TaskStats
}

// NewHandler creates a new Handler, parsing the embedded templates.
// Returns an error if any template fails to parse.
func NewHandler(
	userService *service.UserService,
	sessionService *service.SessionService,
	taskService *service.TaskService,
	cookieName string,
	cookieSecure bool,
	logger *slog.Logger,
) (*Handler, error) {
	pages := []string{"login.html", "register.html", "index.html", "edit.html", "stats.html"}
	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tmpl, err := template.ParseFS(templatesFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		templates[page] = tmpl
	}

	return &Handler{
		userService:    userService,
		sessionService: sessionService,
		taskService:    taskService,
		templates:      templates,
		cookieName:     cookieName,
		cookieSecure:   cookieSecure,
		logger:         logger.With("component", "web_handler"),
	}, nil
}

// Routes registers the HTML routes. requireAuth guards the task pages.
func (h *Handler) Routes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Get("/login", h.LoginForm)
	r.Post("/login", h.Login)
	r.Get("/register", h.RegisterForm)
	r.Post("/register", h.Register)
	r.Get("/logout", h.Logout)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", h.Index)
		r.Post("/add", h.Add)
		r.Get("/complete/{id}", h.Complete)
		r.Get("/delete/{id}", h.Delete)
		r.Get("/edit/{id}", h.EditForm)
		r.Post("/edit/{id}", h.Edit)
		r.Get("/stats", h.Stats)
	})
}

// Index handles GET /, the task list page.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	userID, _ := shared.UserID(r.Context())

	tasks, err := h.taskService.ListByUser(r.Context(), userID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.render(w, r, "index.html", pageData{
		UserID: userID,
		Flash:  popFlash(w, r),
		Tasks:  tasks,
	})
}

// Add handles POST /add, creating a task from the inline form.
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	userID, _ := shared.UserID(r.Context())

	title := r.PostFormValue("title")
	description := r.PostFormValue("description")

	if _, err := h.taskService.Create(r.Context(), userID, title, description); err != nil {
		var validationErr *domain.ValidationError
		switch {
		case errors.As(err, &validationErr):
			setFlash(w, validationErr.Error())
		case errors.Is(err, domain.ErrEmptyTaskTitle), errors.Is(err, domain.ErrTaskTitleTooLong):
			setFlash(w, err.Error())
		default:
			h.serverError(w, r, err)
			return
		}
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Complete handles GET /complete/{id}, toggling the task's completed flag.
// Unknown or foreign task IDs redirect back without comment.
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	userID, _ := shared.UserID(r.Context())

	taskID, err := taskIDParam(r)
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if _, err := h.taskService.ToggleCompletion(r.Context(), userID, taskID); err != nil {
		if !isOwnershipError(err) {
			h.serverError(w, r, err)
			return
		}
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Delete handles GET /delete/{id}. Unknown or foreign task IDs redirect
// back without comment.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := shared.UserID(r.Context())

	taskID, err := taskIDParam(r)
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if err := h.taskService.Delete(r.Context(), userID, taskID); err != nil {
		if !isOwnershipError(err) {
			h.serverError(w, r, err)
			return
		}
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// EditForm handles GET /edit/{id}.
func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	userID, _ := shared.UserID(r.Context())

	taskID, err := taskIDParam(r)
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	task, err := h.taskService.Get(r.Context(), userID, taskID)
	if err != nil {
		if isOwnershipError(err) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		h.serverError(w, r, err)
		return
	}

	h.render(w, r, "edit.html", pageData{
		UserID: userID,
		Flash:  popFlash(w, r),
		Task:   task,
	})
}

// Edit handles POST /edit/{id}, updating the task's title and description.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	userID, _ := shared.UserID(r.Context())

	taskID, err := taskIDParam(r)
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	title := r.PostFormValue("title")
	description := r.PostFormValue("description")

	_, err = h.taskService.Update(r.Context(), userID, taskID, domain.TaskPatch{
		Title:       &title,
		Description: &description,
	})
	if err != nil {
		switch {
		case isOwnershipError(err):
			// fall through to the redirect
		case errors.Is(err, domain.ErrEmptyTaskTitle), errors.Is(err, domain.ErrTaskTitleTooLong):
			setFlash(w, err.Error())
			http.Redirect(w, r, "/edit/"+strconv.FormatInt(taskID, 10), http.StatusSeeOther)
			return
		default:
			h.serverError(w, r, err)
			return
		}
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Stats handles GET /stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, _ := shared.UserID(r.Context())

	stats, err := h.taskService.Stats(r.Context(), userID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.render(w, r, "stats.html", pageData{
		UserID: userID,
		Flash:  popFlash(w, r),
		Stats:  stats,
	})
}

// LoginForm handles GET /login.
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := shared.UserID(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render(w, r, "login.html", pageData{Flash: popFlash(w, r)})
}

// Login handles POST /login. Bad credentials re-render the form with a
// flash message rather than redirecting.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	user, err := h.userService.Authenticate(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.render(w, r, "login.html", pageData{Flash: "Invalid username or password."})
			return
		}
		h.serverError(w, r, err)
		return
	}

	h.startSession(w, r, user)
}

// RegisterForm handles GET /register.
func (h *Handler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := shared.UserID(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render(w, r, "register.html", pageData{Flash: popFlash(w, r)})
}

// Register handles POST /register. A successful registration logs the new
// user straight in; failures re-render the form with a flash message.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	user, err := h.userService.Register(r.Context(), username, password)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrUsernameExists):
			h.render(w, r, "register.html", pageData{Flash: "That username is already taken."})
			return
		case errors.Is(err, domain.ErrValidation),
			errors.Is(err, domain.ErrEmptyUsername),
			errors.Is(err, domain.ErrUsernameTooLong),
			errors.Is(err, domain.ErrEmptyPassword),
			errors.Is(err, domain.ErrPasswordTooLong):
			h.render(w, r, "register.html", pageData{Flash: err.Error()})
			return
		default:
			h.serverError(w, r, err)
			return
		}
	}

	h.startSession(w, r, user)
}

// Logout handles GET /logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.cookieName); err == nil {
		if err := h.sessionService.Logout(r.Context(), cookie.Value); err != nil {
			h.logger.Warn("failed to revoke session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
	})

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// startSession issues a session for the user, sets the cookie, and lands
// on the task list.
func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, user *domain.User) {
	session, err := h.sessionService.Login(r.Context(), user)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    session.ID.String(),
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// render executes the named page template.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, page string, data pageData) {
	tmpl, ok := h.templates[page]
	if !ok {
		h.serverError(w, r, fmt.Errorf("unknown template %s", page))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		h.logger.Error("failed to render template",
			"error", err,
			"template", page)
	}
}

// serverError logs the failure and returns a plain 500 page.
func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("request failed",
		"error", err,
		"path", r.URL.Path,
		"method", r.Method)
	http.Error(w, "Something went wrong.", http.StatusInternalServerError)
}

// isOwnershipError reports whether the error means the task does not exist
// or belongs to another user. The HTML layer treats both as a silent
// redirect so task IDs cannot be probed.
func isOwnershipError(err error) bool {
	return errors.Is(err, store.ErrTaskNotFound) || errors.Is(err, service.ErrTaskNotOwned)
}

// taskIDParam parses the {id} route parameter.
func taskIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
