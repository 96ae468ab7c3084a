package auth

import (
	"errors"
	"fmt"

	"github.com/elprogramador2024/gestor-tareas/internal/domain"
)

// Common authentication errors. All of them match domain.ErrUnauthorized.
var (
	// ErrInvalidToken indicates the token format is invalid or signature doesn't match
	ErrInvalidToken = fmt.Errorf("%w: invalid authentication token", domain.ErrUnauthorized)

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = fmt.Errorf("%w: authentication token has expired", domain.ErrUnauthorized)

	// ErrTokenNotYetValid indicates the token is not yet valid (nbf claim in the future)
	ErrTokenNotYetValid = fmt.Errorf("%w: authentication token not yet valid", domain.ErrUnauthorized)

	// ErrMissingToken indicates a token was expected but not provided
	ErrMissingToken = fmt.Errorf("%w: authentication token is missing", domain.ErrUnauthorized)

	// ErrWrongTokenType indicates an access token was used where a refresh token is expected, or vice versa
	ErrWrongTokenType = fmt.Errorf("%w: wrong token type", domain.ErrUnauthorized)

	// ErrInvalidRefreshToken indicates the refresh token is malformed or its signature doesn't match
	ErrInvalidRefreshToken = fmt.Errorf("%w: invalid refresh token", domain.ErrUnauthorized)

	// ErrExpiredRefreshToken indicates the refresh token has expired
	ErrExpiredRefreshToken = fmt.Errorf("%w: refresh token has expired", domain.ErrUnauthorized)

	// ErrInvalidCredentials indicates an unknown user name or a wrong password.
	// The two cases are not distinguished.
	ErrInvalidCredentials = fmt.Errorf("%w: invalid user name or password", domain.ErrUnauthorized)
)

// IsTokenError reports whether err came from token validation.
func IsTokenError(err error) bool {
	for _, target := range []error{
		ErrInvalidToken, ErrExpiredToken, ErrTokenNotYetValid, ErrMissingToken,
		ErrWrongTokenType, ErrInvalidRefreshToken, ErrExpiredRefreshToken,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
