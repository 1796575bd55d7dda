package apperror

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrBadRequest        = errors.New("bad request")
	ErrInternal          = errors.New("internal server error")
	ErrInvalidInput      = errors.New("invalid input")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// Authentication and registration.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrCodeNotFound       = errors.New("registration code not found")
	ErrCodeAlreadyUsed    = errors.New("registration code already used")
	ErrRoleMismatch       = errors.New("registration code is for a different role")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already registered")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// AppError is a custom error type that can hold an HTTP status code
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Storage wraps a persistence failure so callers can match ErrStorageUnavailable
// while the underlying cause stays available for logging.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStorageUnavailable) {
		return err
	}
	return errors.Join(ErrStorageUnavailable, err)
}

// MapErrorToStatus maps common errors to HTTP status codes
func MapErrorToStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != 0 {
		return appErr.Code
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrCodeNotFound), errors.Is(err, ErrRoleMismatch):
		return http.StatusBadRequest
	case errors.Is(err, ErrCodeAlreadyUsed), errors.Is(err, ErrUsernameTaken), errors.Is(err, ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, ErrRateLimitExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	}
	// Default to internal server error
	return http.StatusInternalServerError
}

// PublicMessage returns the text that may be shown to an end user. Storage and
// unknown failures collapse into a generic retry message.
func PublicMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	switch MapErrorToStatus(err) {
	case http.StatusInternalServerError, http.StatusServiceUnavailable:
		return "Something went wrong. Please try again."
	}
	for _, known := range []error{
		ErrInvalidCredentials, ErrCodeNotFound, ErrCodeAlreadyUsed, ErrRoleMismatch,
		ErrUsernameTaken, ErrEmailTaken, ErrRateLimitExceeded, ErrNotFound,
		ErrUnauthorized, ErrForbidden, ErrInvalidInput, ErrBadRequest,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return err.Error()
}
