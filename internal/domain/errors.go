package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidRole is returned when a role string does not name a known account kind.
	ErrInvalidRole = errors.New("invalid role")

	// ErrEmptyEmail is returned when an account has no email address.
	ErrEmptyEmail = errors.New("email cannot be empty")

	// ErrEmptyUsername is returned when an account has no username.
	ErrEmptyUsername = errors.New("username cannot be empty")

	// ErrEmptyPasswordDigest is returned when an account is persisted without a digest.
	ErrEmptyPasswordDigest = errors.New("password digest cannot be empty")

	// ErrInvalidLanguages is returned when stored language data cannot be decoded.
	ErrInvalidLanguages = errors.New("invalid language preferences")
)
