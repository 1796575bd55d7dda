package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrNotFound, http.StatusNotFound},
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{ErrCodeNotFound, http.StatusBadRequest},
		{ErrRoleMismatch, http.StatusBadRequest},
		{ErrCodeAlreadyUsed, http.StatusConflict},
		{ErrUsernameTaken, http.StatusConflict},
		{ErrEmailTaken, http.StatusConflict},
		{ErrRateLimitExceeded, http.StatusTooManyRequests},
		{Storage(errors.New("connection refused")), http.StatusServiceUnavailable},
		{fmt.Errorf("wrapped: %w", ErrEmailTaken), http.StatusConflict},
		{New(http.StatusTeapot, "short and stout", nil), http.StatusTeapot},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MapErrorToStatus(tt.err), tt.err.Error())
	}
}

func TestStorageKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Storage(cause)

	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Same(t, err, Storage(err))
	assert.Nil(t, Storage(nil))
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "invalid username or password", PublicMessage(fmt.Errorf("teacher lookup: %w", ErrInvalidCredentials)))
	assert.Equal(t, "Something went wrong. Please try again.", PublicMessage(Storage(errors.New("pq: deadlock detected"))))
	assert.Equal(t, "Something went wrong. Please try again.", PublicMessage(errors.New("nil pointer")))
	assert.Equal(t, "Current password is incorrect.", PublicMessage(New(http.StatusBadRequest, "Current password is incorrect.", ErrInvalidCredentials)))
}
