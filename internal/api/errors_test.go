package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elprogramador2024/gestor-tareas/internal/domain"
	"github.com/elprogramador2024/gestor-tareas/internal/service"
	"github.com/elprogramador2024/gestor-tareas/internal/service/auth"
	"github.com/elprogramador2024/gestor-tareas/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToStatusCodeAndMessage(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"invalid credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid user name or password"},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized, "Token expired"},
		{"wrong token type", auth.ErrWrongTokenType, http.StatusUnauthorized, "Invalid refresh token"},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized, "Authentication required"},
		{"forbidden", fmt.Errorf("%w: nope", domain.ErrForbidden), http.StatusForbidden,
			"You do not have permission to perform this action"},
		{"validation with field", domain.NewValidationError("titulo", "cannot be empty", nil), http.StatusBadRequest,
			"Invalid titulo: cannot be empty"},
		{"validation without field", domain.NewValidationError("", "dates must be strings", nil), http.StatusBadRequest,
			"Invalid request: dates must be strings"},
		{"transition", &domain.InvalidTransitionError{From: domain.StatusCompleted, To: domain.StatusPending},
			http.StatusUnprocessableEntity, "Cannot change status from COMPLETED to PENDING"},
		{"task not found", fmt.Errorf("%w: %w", domain.ErrNotFound, store.ErrTaskNotFound), http.StatusNotFound,
			"Task not found"},
		{"user not found", fmt.Errorf("%w: %w", domain.ErrNotFound, store.ErrUserNotFound), http.StatusNotFound,
			"User not found"},
		{"referenced user", fmt.Errorf("%w: %w", domain.ErrConflict, store.ErrReferenced), http.StatusConflict,
			"User still owns tasks"},
		{"duplicate user", fmt.Errorf("%w: %w", domain.ErrConflict, store.ErrUserNameExists), http.StatusConflict,
			"User name already exists"},
		{"wrapped by service", service.NewTaskServiceError("get", "failed", domain.ErrForbidden), http.StatusForbidden,
			"You do not have permission to perform this action"},
		{"unknown", errors.New("pq: connection refused to 10.0.0.3"), http.StatusInternalServerError,
			"An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, MapErrorToStatusCode(tt.err))
			assert.Equal(t, tt.message, GetSafeErrorMessage(tt.err))
		})
	}
}

func TestHandleAPIError(t *testing.T) {
	t.Run("default message replaces internal errors", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/tareas", nil)
		HandleAPIError(rec, req, errors.New("SELECT * FROM tareas failed"), "Failed to list tasks")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Failed to list tasks", body["error"])
		assert.NotContains(t, rec.Body.String(), "SELECT")
	})

	t.Run("default message does not hide client errors", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/tareas/9", nil)
		HandleAPIError(rec, req, fmt.Errorf("%w: %w", domain.ErrNotFound, store.ErrTaskNotFound), "Failed to get task")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "Task not found")
	})
}
