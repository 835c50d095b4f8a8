package auth

import (
	"errors"
	"fmt"
)

// Credential errors. Both specific errors wrap ErrInvalidCredentials so
// callers can show one message without learning which check failed.
var (
	// ErrInvalidCredentials is the umbrella for every failed login.
	ErrInvalidCredentials = errors.New("invalid login credentials")

	// ErrAccountNotFound indicates no account of the requested role uses the email.
	ErrAccountNotFound = fmt.Errorf("%w: account not found", ErrInvalidCredentials)

	// ErrBadCredentials indicates the password did not match.
	ErrBadCredentials = fmt.Errorf("%w: password mismatch", ErrInvalidCredentials)
)

// Session errors. All of them wrap ErrNoSession.
var (
	// ErrNoSession indicates the request carries no usable session.
	ErrNoSession = errors.New("no valid session")

	// ErrMissingToken indicates a token was expected but not provided
	ErrMissingToken = fmt.Errorf("%w: session token is missing", ErrNoSession)

	// ErrInvalidToken indicates the token format is invalid or signature doesn't match
	ErrInvalidToken = fmt.Errorf("%w: invalid session token", ErrNoSession)

	// ErrExpiredToken indicates the token or its session has expired
	ErrExpiredToken = fmt.Errorf("%w: session has expired", ErrNoSession)

	// ErrSessionRevoked indicates the session was logged out or purged.
	ErrSessionRevoked = fmt.Errorf("%w: session no longer exists", ErrNoSession)
)
