package api

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/taskdeck/taskdeck-api/internal/domain"
	"github.com/taskdeck/taskdeck-api/internal/service"
	"github.com/taskdeck/taskdeck-api/internal/service/auth"
	"github.com/taskdeck/taskdeck-api/internal/store"
)

// Standard messages for error responses. Internal error details never
// leak to clients; the trace ID in the response links back to the logs.
const (
	MsgInternalError      = "An internal error occurred"
	MsgInvalidRequest     = "Invalid request"
	MsgInvalidCredentials = "Invalid credentials"
	MsgAuthRequired       = "Authentication required"
	MsgAccessDenied       = "Access denied"
	MsgNotFound           = "Resource not found"
	MsgUsernameTaken      = "Username is already taken"
)

// MapErrorToStatusCode maps service and store errors to HTTP status codes
// and client-safe messages.
func MapErrorToStatusCode(err error) (int, string) {
	var validationErrs validator.ValidationErrors

	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, MsgInvalidCredentials
	case errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return http.StatusUnauthorized, MsgAuthRequired
	case errors.Is(err, service.ErrTaskNotOwned):
		return http.StatusForbidden, MsgAccessDenied
	case errors.Is(err, store.ErrTaskNotFound),
		errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, MsgNotFound
	case errors.Is(err, store.ErrUsernameExists):
		return http.StatusConflict, MsgUsernameTaken
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity),
		errors.As(err, &validationErrs),
		isDomainValidationError(err):
		return http.StatusBadRequest, validationMessage(err)
	default:
		return http.StatusInternalServerError, MsgInternalError
	}
}

// domainValidationErrors lists the plain sentinel errors domain
// constructors return for bad input.
var domainValidationErrors = []error{
	domain.ErrEmptyUsername,
	domain.ErrUsernameTooLong,
	domain.ErrEmptyPassword,
	domain.ErrPasswordTooLong,
	domain.ErrEmptyTaskTitle,
	domain.ErrTaskTitleTooLong,
	domain.ErrEmptyTaskUserID,
}

func isDomainValidationError(err error) bool {
	for _, sentinel := range domainValidationErrors {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// validationMessage extracts a client-safe message from a validation
// error. Domain validation errors carry their own wording; validator tag
// failures collapse to a generic message.
func validationMessage(err error) string {
	var domainErr *domain.ValidationError
	if errors.As(err, &domainErr) {
		return domainErr.Error()
	}
	if isDomainValidationError(err) {
		return err.Error()
	}
	return MsgInvalidRequest
}
