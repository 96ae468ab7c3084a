package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/elprogramador2024/gestor-tareas/internal/api/shared"
	"github.com/elprogramador2024/gestor-tareas/internal/domain"
	"github.com/elprogramador2024/gestor-tareas/internal/platform/logger"
	"github.com/elprogramador2024/gestor-tareas/internal/service/auth"
)

// RoleResolver returns the current roles of a user.
type RoleResolver interface {
	RolesOf(ctx context.Context, userName string) ([]domain.Role, error)
}

// AuthMiddleware provides JWT authentication for routes.
type AuthMiddleware struct {
	jwtService auth.JWTService
	roles      RoleResolver
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(jwtService auth.JWTService, roles RoleResolver) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		roles:      roles,
	}
}

// Authenticate validates the bearer token, resolves the caller's current
// roles and stores the resulting identity in the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
			return
		}

		claims, err := m.jwtService.ValidateToken(r.Context(), parts[1])
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
			case auth.IsTokenError(err):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
			default:
				shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Authentication error", err)
			}
			return
		}

		roles, err := m.roles.RolesOf(r.Context(), claims.UserName)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthorized) {
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
				return
			}
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Authentication error", err)
			return
		}

		identity := domain.NewIdentity(claims.UserName, roles...)
		ctx := shared.WithIdentity(r.Context(), identity)
		log := logger.FromContextOrDefault(ctx, slog.Default()).With(slog.String("user_name", identity.UserName))
		ctx = logger.WithLogger(ctx, log)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetIdentity extracts the authenticated identity from the request context.
func GetIdentity(r *http.Request) (*domain.Identity, bool) {
	id := shared.IdentityFromContext(r.Context())
	return id, id != nil
}

