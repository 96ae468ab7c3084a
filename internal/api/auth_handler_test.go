package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/elprogramador2024/gestor-tareas/internal/domain"
	"github.com/elprogramador2024/gestor-tareas/internal/mocks"
	"github.com/elprogramador2024/gestor-tareas/internal/platform/logger"
	"github.com/elprogramador2024/gestor-tareas/internal/platform/ratelimit"
	"github.com/elprogramador2024/gestor-tareas/internal/service/auth"
	"github.com/elprogramador2024/gestor-tareas/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingLimiter allows limit attempts per key and records resets.
type countingLimiter struct {
	mu       sync.Mutex
	limit    int
	attempts map[string]int
	resets   []string
	err      error
}

func newCountingLimiter(limit int) *countingLimiter {
	return &countingLimiter{limit: limit, attempts: make(map[string]int)}
}

func (l *countingLimiter) Allow(_ context.Context, key string) (*ratelimit.Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	l.attempts[key]++
	n := l.attempts[key]
	return &ratelimit.Result{
		Allowed:   n <= l.limit,
		Remaining: max(l.limit-n, 0),
		ResetAt:   time.Now().Add(30 * time.Second),
		Limit:     l.limit,
	}, nil
}

func (l *countingLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, key)
	l.resets = append(l.resets, key)
	return nil
}

var fixedNow = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

func newAuthHandlerFixture(t *testing.T, limiter ratelimit.Limiter) (*AuthHandler, *mocks.MockJWTService, *memory.UserStore) {
	t.Helper()
	log, _ := logger.NewTestLogger()
	users := memory.NewUserStore(nil)
	verifier := &mocks.MockPasswordVerifier{
		CompareFn: func(hashed, password string) error {
			if hashed == "hashed:"+password {
				return nil
			}
			return errors.New("mismatch")
		},
	}
	require.NoError(t, users.Create(context.Background(), &domain.User{
		UserName:       "maria",
		Email:          "maria@example.com",
		HashedPassword: "hashed:secreta-123",
		Roles:          []domain.Role{domain.RoleSupervisor},
	}))

	jwtService := &mocks.MockJWTService{Token: "access-token", RefreshToken: "refresh-token"}
	h := NewAuthHandler(auth.NewDirectory(users, verifier, log), jwtService, limiter, time.Hour, log).
		WithTimeFunc(func() time.Time { return fixedNow })
	return h, jwtService, users
}

func postJSON(handler http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "192.0.2.10:51234"
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("valid credentials issue tokens", func(t *testing.T) {
		limiter := newCountingLimiter(5)
		h, _, _ := newAuthHandlerFixture(t, limiter)

		rec := postJSON(h.Login, "/api/usuarios/login", `{"name":"maria","password":"secreta-123"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp AuthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "maria", resp.UserName)
		assert.Equal(t, []string{"Supervisor"}, resp.Roles)
		assert.Equal(t, "access-token", resp.AccessToken)
		assert.Equal(t, "refresh-token", resp.RefreshToken)
		assert.Equal(t, "2026-05-04T13:00:00Z", resp.ExpiresAt)
		assert.Equal(t, []string{"maria|192.0.2.10"}, limiter.resets)
	})

	t.Run("wrong password and unknown user look the same", func(t *testing.T) {
		h, _, _ := newAuthHandlerFixture(t, nil)

		wrong := postJSON(h.Login, "/api/usuarios/login", `{"name":"maria","password":"otra"}`)
		unknown := postJSON(h.Login, "/api/usuarios/login", `{"name":"nadie","password":"otra"}`)

		assert.Equal(t, http.StatusUnauthorized, wrong.Code)
		assert.Equal(t, http.StatusUnauthorized, unknown.Code)
		assert.Equal(t, errorMessage(t, wrong), errorMessage(t, unknown))
	})

	t.Run("missing fields", func(t *testing.T) {
		h, _, _ := newAuthHandlerFixture(t, nil)
		rec := postJSON(h.Login, "/api/usuarios/login", `{"name":"maria"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid password: is required", errorMessage(t, rec))
	})

	t.Run("too many attempts are throttled", func(t *testing.T) {
		limiter := newCountingLimiter(2)
		h, _, _ := newAuthHandlerFixture(t, limiter)

		for i := 0; i < 2; i++ {
			rec := postJSON(h.Login, "/api/usuarios/login", `{"name":"Maria","password":"mal"}`)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		}
		rec := postJSON(h.Login, "/api/usuarios/login", `{"name":"maria","password":"secreta-123"}`)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("Retry-After"))
		assert.Empty(t, limiter.resets)
	})

	t.Run("limiter failure does not block login", func(t *testing.T) {
		limiter := newCountingLimiter(1)
		limiter.err = errors.New("redis: connection refused")
		h, _, _ := newAuthHandlerFixture(t, limiter)

		rec := postJSON(h.Login, "/api/usuarios/login", `{"name":"maria","password":"secreta-123"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("token generation failure is internal", func(t *testing.T) {
		h, jwtService, _ := newAuthHandlerFixture(t, nil)
		jwtService.GenerateTokenFn = func(context.Context, string) (string, error) {
			return "", errors.New("signing key unavailable")
		}

		rec := postJSON(h.Login, "/api/usuarios/login", `{"name":"maria","password":"secreta-123"}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Failed to generate authentication token", errorMessage(t, rec))
	})
}

func TestAuthHandler_RefreshToken(t *testing.T) {
	t.Run("valid refresh token", func(t *testing.T) {
		h, jwtService, _ := newAuthHandlerFixture(t, nil)
		jwtService.ValidateRefreshTokenFn = func(_ context.Context, token string) (*auth.Claims, error) {
			require.Equal(t, "old-refresh", token)
			return &auth.Claims{UserName: "maria", TokenType: auth.TokenTypeRefresh}, nil
		}

		rec := postJSON(h.RefreshToken, "/api/usuarios/refresh", `{"refresh_token":"old-refresh"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp AuthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "access-token", resp.AccessToken)
		assert.Equal(t, []string{"Supervisor"}, resp.Roles)
	})

	t.Run("expired refresh token", func(t *testing.T) {
		h, jwtService, _ := newAuthHandlerFixture(t, nil)
		jwtService.ValidateErr = auth.ErrExpiredRefreshToken

		rec := postJSON(h.RefreshToken, "/api/usuarios/refresh", `{"refresh_token":"viejo"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid refresh token", errorMessage(t, rec))
	})

	t.Run("deleted user cannot refresh", func(t *testing.T) {
		h, jwtService, users := newAuthHandlerFixture(t, nil)
		jwtService.Claims = &auth.Claims{UserName: "maria", TokenType: auth.TokenTypeRefresh}
		require.NoError(t, users.Delete(context.Background(), "maria"))

		rec := postJSON(h.RefreshToken, "/api/usuarios/refresh", `{"refresh_token":"x"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		h, _, _ := newAuthHandlerFixture(t, nil)
		rec := postJSON(h.RefreshToken, "/api/usuarios/refresh", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
