package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/elprogramador2024/gestor-tareas/internal/domain"
	"github.com/go-playground/validator/v10"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 1 << 20

// Global validator instance for reuse. Field names in errors are the JSON names.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeJSON decodes the request body into v. Malformed bodies yield a
// *domain.ValidationError so they map to 400.
func DecodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	if err := dec.Decode(v); err != nil {
		var typeErr *json.UnmarshalTypeError
		var validationErr *domain.ValidationError
		switch {
		case errors.As(err, &validationErr):
			return validationErr
		case errors.Is(err, io.EOF):
			return domain.NewValidationError("body", "cannot be empty", nil)
		case errors.As(err, &typeErr):
			return domain.NewValidationError(typeErr.Field, fmt.Sprintf("must be a %s", typeErr.Type), nil)
		default:
			return domain.NewValidationError("body", "is not valid JSON", nil)
		}
	}
	return nil
}

// ValidateRequest validates v with its `validate` tags. The first failing
// field is reported as a *domain.ValidationError.
func ValidateRequest(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return domain.NewValidationError(fe.Field(), validationTagMessage(fe.Tag(), fe.Param()), nil)
	}
	return domain.NewValidationError("", "request is invalid", nil)
}

// validationTagMessage maps validation tags to user-friendly messages.
func validationTagMessage(tag, param string) string {
	switch tag {
	case "required":
		return "is required"
	case "email":
		return "has invalid email format"
	case "min":
		return "is too short"
	case "max":
		return "is too long"
	case "gt", "gte":
		return "must be greater than " + param
	case "oneof":
		return "must be one of " + param
	default:
		return "is invalid"
	}
}
