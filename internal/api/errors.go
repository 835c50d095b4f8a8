package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/phrazzld/guidematch/internal/domain"
	"github.com/phrazzld/guidematch/internal/platform/filestore"
	"github.com/phrazzld/guidematch/internal/service/auth"
	"github.com/phrazzld/guidematch/internal/service/registration"
	"github.com/phrazzld/guidematch/internal/store"
)

// fieldLabels names form fields the way the forms present them.
var fieldLabels = map[string]string{
	"user_type":   "account type",
	"email":       "email",
	"username":    "username",
	"password":    "password",
	"certificate": "certificate",
}

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types to clients.
func MapErrorToStatusCode(err error) int {
	var tooBig *http.MaxBytesError

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrNoSession):
		return http.StatusUnauthorized

	// Conflict errors
	case errors.Is(err, registration.ErrEmailTaken),
		errors.Is(err, store.ErrEmailExists):
		return http.StatusConflict

	// Upload limits
	case errors.Is(err, filestore.ErrTooLarge),
		errors.As(err, &tooBig):
		return http.StatusRequestEntityTooLarge

	// Bad request errors
	case errors.Is(err, registration.ErrInvalidCertificate),
		errors.Is(err, registration.ErrMissingField),
		errors.Is(err, registration.ErrInvalidField),
		errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	case errors.Is(err, store.ErrAccountNotFound):
		return http.StatusNotFound

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns the user-facing message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "Something went wrong. Please try again."
	}

	var tooBig *http.MaxBytesError
	var fieldErr *registration.FieldError

	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid login credentials."

	case errors.Is(err, auth.ErrNoSession):
		return "Please log in to continue."

	case errors.Is(err, registration.ErrEmailTaken),
		errors.Is(err, store.ErrEmailExists):
		return "An account of this type is already registered with that email."

	case errors.Is(err, filestore.ErrTooLarge),
		errors.As(err, &tooBig):
		return "The uploaded file is too large."

	case errors.Is(err, registration.ErrInvalidCertificate):
		return "The certificate must be a PDF or an image file."

	case errors.Is(err, domain.ErrInvalidRole):
		return "Please choose Tourist or Tour Guide."

	case errors.As(err, &fieldErr) && errors.Is(err, registration.ErrMissingField):
		return fmt.Sprintf("Please fill in the %s field.", labelFor(fieldErr.Field))

	case errors.As(err, &fieldErr) && errors.Is(err, registration.ErrInvalidField):
		return fmt.Sprintf("Please enter a valid %s.", labelFor(fieldErr.Field))

	case errors.Is(err, registration.ErrInvalidField),
		errors.Is(err, store.ErrInvalidEntity):
		return "Some of the details you entered are not valid."

	case errors.Is(err, store.ErrAccountNotFound):
		return "Account not found."

	default:
		return "Something went wrong. Please try again."
	}
}

func labelFor(field string) string {
	if label, ok := fieldLabels[field]; ok {
		return label
	}
	return "form"
}
