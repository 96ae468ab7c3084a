package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elprogramador2024/gestor-tareas/internal/domain"
	"github.com/elprogramador2024/gestor-tareas/internal/pagination"
	"github.com/elprogramador2024/gestor-tareas/internal/service"
)

// Date accepts RFC 3339 timestamps as well as zone-less "2006-01-02T15:04:05"
// and plain "2006-01-02" values, which are read as UTC.
type Date struct {
	time.Time
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.NewValidationError("", "dates must be strings", nil)
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return domain.NewValidationError("", fmt.Sprintf("%q is not a valid date", raw), nil)
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Name     string `json:"name"     validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	UserName string   `json:"userName"`
	Roles    []string `json:"roles"`

	// AccessToken is the JWT used for API authorization
	AccessToken string `json:"token"`

	// RefreshToken is the JWT used to obtain new access tokens
	RefreshToken string `json:"refresh_token"`

	// ExpiresAt is the RFC 3339 timestamp when the access token expires
	ExpiresAt string `json:"expires_at"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TaskRequest is the body of task create and update requests.
// Status is honoured on create only.
type TaskRequest struct {
	ID          int64  `json:"id"          validate:"gte=0"`
	Titulo      string `json:"titulo"      validate:"required,max=200"`
	Descripcion string `json:"descripcion" validate:"max=4000"`
	FechaIni    Date   `json:"fechaIni"    validate:"required"`
	FechaFin    Date   `json:"fechaFin"    validate:"required"`
	UserName    string `json:"userName"    validate:"max=256"`
	Estado      string `json:"estado"`
}

// Task converts the request to a domain task.
func (r TaskRequest) Task() domain.Task {
	return domain.Task{
		ID:            r.ID,
		Title:         strings.TrimSpace(r.Titulo),
		Description:   r.Descripcion,
		StartDate:     r.FechaIni.Time,
		EndDate:       r.FechaFin.Time,
		OwnerUserName: strings.TrimSpace(r.UserName),
		Status:        domain.Status(r.Estado),
	}
}

// StatusRequest is the body of a status change.
type StatusRequest struct {
	ID     int64  `json:"id"     validate:"required,gt=0"`
	Estado string `json:"estado" validate:"required"`
}

// TaskMessageResponse confirms a task mutation.
type TaskMessageResponse struct {
	Message string       `json:"message"`
	Tarea   *domain.Task `json:"tarea"`
}

func newTaskMessageResponse(res *service.Result) TaskMessageResponse {
	return TaskMessageResponse{Message: res.Message, Tarea: res.Task}
}

// TaskListResponse is one page of tasks.
type TaskListResponse struct {
	Tareas     []domain.Task `json:"tareas"`
	TotalCount int           `json:"totalCount"`
	PageNumber int           `json:"pageNumber"`
	PageSize   int           `json:"pageSize"`
	TotalPages int           `json:"totalPages"`
}

func newTaskListResponse(page *pagination.Page[domain.Task]) TaskListResponse {
	return TaskListResponse{
		Tareas:     page.Items,
		TotalCount: page.TotalCount,
		PageNumber: page.PageNumber,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}
}

// RolRequest is a single role in the legacy {"rol": {"name": ...}} shape.
type RolRequest struct {
	Name string `json:"name" validate:"required"`
}

// UserRequest is the body of user create and update requests. A role may
// be given either as "rol" or as a "roles" list.
type UserRequest struct {
	Nombre   string      `json:"nombre"   validate:"required,max=256"`
	Email    string      `json:"email"    validate:"omitempty,email"`
	Password string      `json:"password" validate:"omitempty,min=8,max=72"`
	Rol      *RolRequest `json:"rol"`
	Roles    []string    `json:"roles"`
}

// User converts the request to a domain user, resolving role names.
func (r UserRequest) User() (domain.User, error) {
	names := r.Roles
	if r.Rol != nil && r.Rol.Name != "" {
		names = append([]string{r.Rol.Name}, names...)
	}
	roles, err := domain.ParseRoles(names)
	if err != nil {
		return domain.User{}, err
	}
	return domain.User{
		UserName: strings.TrimSpace(r.Nombre),
		Email:    strings.TrimSpace(r.Email),
		Password: r.Password,
		Roles:    roles,
	}, nil
}

// UserMessageResponse confirms a user mutation.
type UserMessageResponse struct {
	Message string       `json:"message"`
	Usuario *domain.User `json:"usuario"`
}
