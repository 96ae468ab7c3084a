package shared

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elprogramador2024/gestor-tareas/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Titulo string `json:"titulo"`
		ID     int64  `json:"id"`
	}

	tests := []struct {
		name      string
		body      string
		wantErr   bool
		wantField string
	}{
		{name: "valid json", body: `{"titulo": "informe", "id": 3}`},
		{name: "invalid json", body: `{"titulo": "informe",}`, wantErr: true, wantField: "body"},
		{name: "empty body", body: "", wantErr: true, wantField: "body"},
		{name: "wrong type", body: `{"id": "tres"}`, wantErr: true, wantField: "id"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/test", bytes.NewBufferString(tc.body))
			var p payload
			err := DecodeJSON(req, &p)
			if !tc.wantErr {
				require.NoError(t, err)
				assert.Equal(t, "informe", p.Titulo)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrValidation)
			var vErr *domain.ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tc.wantField, vErr.Field)
		})
	}
}

func TestValidateRequest(t *testing.T) {
	type login struct {
		Name     string `json:"name"     validate:"required"`
		Password string `json:"password" validate:"required,min=8"`
	}

	assert.NoError(t, ValidateRequest(&login{Name: "admin", Password: "Admin052@"}))

	err := ValidateRequest(&login{Password: "Admin052@"})
	require.Error(t, err)
	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "name", vErr.Field)
	assert.Equal(t, "is required", vErr.Message)

	err = ValidateRequest(&login{Name: "admin", Password: "corta"})
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "password", vErr.Field)
	assert.Equal(t, "is too short", vErr.Message)
}
