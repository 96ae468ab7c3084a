package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/elprogramador2024/gestor-tareas/internal/api/middleware"
	"github.com/elprogramador2024/gestor-tareas/internal/api/shared"
	"github.com/elprogramador2024/gestor-tareas/internal/domain"
	"github.com/elprogramador2024/gestor-tareas/internal/pagination"
	"github.com/go-chi/chi/v5"
)

// Query parameter names for pagination.
const (
	pageNumberParam = "pgnum"
	pageSizeParam   = "pgsize"
)

// callerFromRequest returns the identity placed in the context by the
// authentication middleware. A nil caller makes every service call fail
// with domain.ErrUnauthorized.
func callerFromRequest(r *http.Request) *domain.Identity {
	id, ok := middleware.GetIdentity(r)
	if !ok {
		return nil
	}
	return id
}

// getPathID extracts a positive task id from the URL path.
func getPathID(r *http.Request, paramName string) (int64, error) {
	raw := chi.URLParam(r, paramName)
	if raw == "" {
		return 0, domain.NewValidationError(paramName, "is required", nil)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(paramName, "must be a positive integer", nil)
	}
	return id, nil
}

// getPathString extracts a non-empty path parameter.
func getPathString(r *http.Request, paramName string) (string, error) {
	raw := strings.TrimSpace(chi.URLParam(r, paramName))
	if raw == "" {
		return "", domain.NewValidationError(paramName, "is required", nil)
	}
	return raw, nil
}

// getPageParams reads pgnum and pgsize, defaulting to the first page of
// pagination.DefaultPageSize items. Range checks are left to the service.
func getPageParams(r *http.Request) (int, int, error) {
	number, err := queryInt(r, pageNumberParam, 1)
	if err != nil {
		return 0, 0, err
	}
	size, err := queryInt(r, pageSizeParam, pagination.DefaultPageSize)
	if err != nil {
		return 0, 0, err
	}
	return number, size, nil
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(name, "must be an integer", nil)
	}
	return n, nil
}

// decodeAndValidate decodes the JSON body into req and runs its validation
// tags, writing a 400 response on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := shared.DecodeJSON(r, req); err != nil {
		HandleAPIError(w, r, err, "")
		return false
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, err, "")
		return false
	}
	return true
}
