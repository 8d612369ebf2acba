package auth

import "errors"

// Common authentication service errors
var (
	// ErrInvalidCredentials indicates a login attempt with an unknown
	// username or a wrong password. The two cases are deliberately not
	// distinguished to resist account enumeration.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrInvalidToken indicates the token format is invalid or the
	// signature doesn't match
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid indicates the token is not yet valid (nbf claim in the future)
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")

	// ErrMissingToken indicates a token was expected but not provided
	ErrMissingToken = errors.New("authentication token is missing")
)
