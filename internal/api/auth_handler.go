package api

import (
	"log/slog"
	"net/http"

	"github.com/taskdeck/taskdeck-api/internal/api/shared"
	"github.com/taskdeck/taskdeck-api/internal/service"
	"github.com/taskdeck/taskdeck-api/internal/service/auth"
)

// AuthHandler serves the JSON registration and login endpoints. Successful
// calls return a Bearer access token for subsequent API requests.
type AuthHandler struct {
	userService *service.UserService
	jwtService  auth.JWTService
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	userService *service.UserService,
	jwtService auth.JWTService,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		jwtService:  jwtService,
		logger:      logger.With("component", "auth_handler"),
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, MsgInvalidRequest)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, MsgInvalidRequest)
		return
	}

	user, err := h.userService.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		status, message := MapErrorToStatusCode(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("failed to register user", "error", err)
		}
		shared.RespondWithError(w, r, status, message)
		return
	}

	h.respondWithToken(w, r, user.ID, http.StatusCreated)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, MsgInvalidRequest)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, MsgInvalidRequest)
		return
	}

	user, err := h.userService.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		status, message := MapErrorToStatusCode(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("failed to authenticate user", "error", err)
		}
		shared.RespondWithError(w, r, status, message)
		return
	}

	h.respondWithToken(w, r, user.ID, http.StatusOK)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, r *http.Request, userID int64, status int) {
	token, err := h.jwtService.GenerateToken(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to generate token",
			"error", err,
			"user_id", userID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, MsgInternalError)
		return
	}

	shared.RespondWithJSON(w, r, status, AuthResponse{
		UserID: userID,
		Token:  token,
	})
}
