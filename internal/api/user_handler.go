package api

import (
	"net/http"

	"github.com/elprogramador2024/gestor-tareas/internal/api/shared"
	"github.com/elprogramador2024/gestor-tareas/internal/domain"
	"github.com/elprogramador2024/gestor-tareas/internal/service"
)

// UserHandler serves the administrator-only /api/usuarios endpoints.
type UserHandler struct {
	users service.UserService
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users service.UserService) *UserHandler {
	if users == nil {
		panic("users cannot be nil")
	}
	return &UserHandler{users: users}
}

// List handles GET /api/usuarios.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context(), callerFromRequest(r))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list users")
		return
	}
	if users == nil {
		users = []domain.User{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, users)
}

// Create handles POST /api/usuarios.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	user, err := req.User()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	res, err := h.users.CreateUser(r.Context(), callerFromRequest(r), user)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, UserMessageResponse{Message: res.Message, Usuario: res.User})
}

// Update handles PUT /api/usuarios.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	user, err := req.User()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	res, err := h.users.UpdateUser(r.Context(), callerFromRequest(r), user)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update user")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, UserMessageResponse{Message: res.Message, Usuario: res.User})
}

// Delete handles DELETE /api/usuarios/{userName}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userName, err := getPathString(r, "userName")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	res, err := h.users.DeleteUser(r.Context(), callerFromRequest(r), userName)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to delete user")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, UserMessageResponse{Message: res.Message, Usuario: res.User})
}
