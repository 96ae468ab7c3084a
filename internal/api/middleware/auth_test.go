package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elprogramador2024/gestor-tareas/internal/domain"
	"github.com/elprogramador2024/gestor-tareas/internal/mocks"
	"github.com/elprogramador2024/gestor-tareas/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roleTable map[string][]domain.Role

func (t roleTable) RolesOf(_ context.Context, userName string) ([]domain.Role, error) {
	if userName == "broken" {
		return nil, errors.New("connection reset")
	}
	roles, ok := t[userName]
	if !ok {
		return nil, fmt.Errorf("%w: user %s no longer exists", domain.ErrUnauthorized, userName)
	}
	return roles, nil
}

func validatingJWT() *mocks.MockJWTService {
	return &mocks.MockJWTService{
		ValidateTokenFn: func(_ context.Context, token string) (*auth.Claims, error) {
			switch token {
			case "expired":
				return nil, auth.ErrExpiredToken
			case "refresh":
				return nil, auth.ErrWrongTokenType
			case "garbage":
				return nil, auth.ErrInvalidToken
			case "explode":
				return nil, errors.New("keystore offline")
			default:
				return &auth.Claims{UserName: token, TokenType: auth.TokenTypeAccess}, nil
			}
		},
	}
}

func TestAuthenticate(t *testing.T) {
	roles := roleTable{"maria": {domain.RoleSupervisor}}
	mw := NewAuthMiddleware(validatingJWT(), roles)

	var seen *domain.Identity
	protected := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := GetIdentity(r)
		require.True(t, ok)
		seen = id
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"no header", "", http.StatusUnauthorized, "Authorization header required"},
		{"not bearer", "Basic bWFyaWE6eA==", http.StatusUnauthorized, "Invalid authorization format"},
		{"too many parts", "Bearer a b", http.StatusUnauthorized, "Invalid authorization format"},
		{"expired", "Bearer expired", http.StatusUnauthorized, "Token expired"},
		{"refresh used as access", "Bearer refresh", http.StatusUnauthorized, "Invalid token"},
		{"bad signature", "Bearer garbage", http.StatusUnauthorized, "Invalid token"},
		{"validator failure", "Bearer explode", http.StatusInternalServerError, "Authentication error"},
		{"deleted user", "Bearer pedro", http.StatusUnauthorized, "Invalid token"},
		{"role lookup failure", "Bearer broken", http.StatusInternalServerError, "Authentication error"},
		{"valid", "bearer maria", http.StatusNoContent, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/api/tareas", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Contains(t, rec.Body.String(), tt.body)
				assert.Nil(t, seen)
			}
		})
	}

	require.NotNil(t, seen)
	assert.Equal(t, "maria", seen.UserName)
	assert.Equal(t, []domain.Role{domain.RoleSupervisor}, seen.Roles)
}

func TestGetIdentity_Missing(t *testing.T) {
	id, ok := GetIdentity(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)
	assert.Nil(t, id)
}
