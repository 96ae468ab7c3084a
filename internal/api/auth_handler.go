package api

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/elprogramador2024/gestor-tareas/internal/api/shared"
	"github.com/elprogramador2024/gestor-tareas/internal/domain"
	"github.com/elprogramador2024/gestor-tareas/internal/platform/logger"
	"github.com/elprogramador2024/gestor-tareas/internal/platform/ratelimit"
	"github.com/elprogramador2024/gestor-tareas/internal/redact"
	"github.com/elprogramador2024/gestor-tareas/internal/service/auth"
)

// IdentityProvider verifies credentials and resolves current roles.
type IdentityProvider interface {
	Authenticate(ctx context.Context, userName, password string) (*domain.Identity, error)
	RolesOf(ctx context.Context, userName string) ([]domain.Role, error)
}

// AuthHandler handles login and token refresh.
type AuthHandler struct {
	identities    IdentityProvider
	jwtService    auth.JWTService
	limiter       ratelimit.Limiter
	tokenLifetime time.Duration
	timeFunc      func() time.Time
	logger        *slog.Logger
}

// NewAuthHandler creates a new AuthHandler. A nil limiter disables login throttling.
func NewAuthHandler(
	identities IdentityProvider,
	jwtService auth.JWTService,
	limiter ratelimit.Limiter,
	tokenLifetime time.Duration,
	logger *slog.Logger,
) *AuthHandler {
	if identities == nil {
		panic("identities cannot be nil")
	}
	if jwtService == nil {
		panic("jwtService cannot be nil")
	}
	if limiter == nil {
		limiter = ratelimit.NoopLimiter{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		identities:    identities,
		jwtService:    jwtService,
		limiter:       limiter,
		tokenLifetime: tokenLifetime,
		timeFunc:      time.Now,
		logger:        logger.With(slog.String("component", "auth_handler")),
	}
}

// WithTimeFunc returns a copy of h that uses timeFunc for expiry timestamps.
func (h *AuthHandler) WithTimeFunc(timeFunc func() time.Time) *AuthHandler {
	c := *h
	c.timeFunc = timeFunc
	return &c
}

// Login handles POST /api/usuarios/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	key := strings.ToLower(strings.TrimSpace(req.Name)) + "|" + clientIP(r)
	limit, err := h.limiter.Allow(r.Context(), key)
	switch {
	case err != nil:
		// Fail open when the limiter is unavailable.
		log.Warn("login rate limiter unavailable", redact.ErrorAttr(err))
	case !limit.Allowed:
		retryAfter := int(time.Until(limit.ResetAt).Seconds()) + 1
		if retryAfter < 1 {
			retryAfter = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		shared.RespondWithErrorAndLog(w, r, http.StatusTooManyRequests,
			"Too many login attempts, try again later", nil)
		return
	}

	identity, err := h.identities.Authenticate(r.Context(), req.Name, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to authenticate user")
		return
	}
	if err := h.limiter.Reset(r.Context(), key); err != nil {
		log.Warn("failed to reset login attempts", redact.ErrorAttr(err))
	}

	resp, err := h.issueTokens(r.Context(), identity)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate authentication token")
		return
	}

	log.Info("user logged in", "user_name", identity.UserName)
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// RefreshToken handles POST /api/usuarios/refresh.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	// Deleted users cannot refresh.
	roles, err := h.identities.RolesOf(r.Context(), claims.UserName)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to refresh token")
		return
	}

	resp, err := h.issueTokens(r.Context(), domain.NewIdentity(claims.UserName, roles...))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate authentication token")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

func (h *AuthHandler) issueTokens(ctx context.Context, identity *domain.Identity) (*AuthResponse, error) {
	access, err := h.jwtService.GenerateToken(ctx, identity.UserName)
	if err != nil {
		return nil, err
	}
	refresh, err := h.jwtService.GenerateRefreshToken(ctx, identity.UserName)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{
		UserName:     identity.UserName,
		Roles:        domain.RoleNames(identity.Roles),
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    h.timeFunc().Add(h.tokenLifetime).UTC().Format(time.RFC3339),
	}, nil
}

// clientIP returns the request's remote host. chi's RealIP middleware has
// already applied X-Forwarded-For when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
