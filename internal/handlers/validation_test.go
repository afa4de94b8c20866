package handlers

import (
	"testing"

	"github.com/stretchr/testify/require"

	appValidator "github.com/lukewarren/accountd/pkg/validator"
)

func TestFormatValidationErrorRequiredCollapses(t *testing.T) {
	err := appValidator.FieldErrors{
		{Field: "email", Tag: "required"},
		{Field: "password", Tag: "min", Param: "8"},
	}
	require.Equal(t, "All fields are required", formatValidationError(err))
}

func TestFormatValidationErrorPasswordLength(t *testing.T) {
	err := appValidator.FieldErrors{{Field: "password", Tag: "min", Param: "8"}}
	require.Equal(t, "Password must be at least 8 characters long", formatValidationError(err))
}

func TestFormatValidationErrorEmail(t *testing.T) {
	err := appValidator.FieldErrors{{Field: "email", Tag: "email"}}
	require.Equal(t, "email must be a valid email address", formatValidationError(err))
}

func TestFormatValidationErrorFallback(t *testing.T) {
	require.Equal(t, "invalid request payload", formatValidationError(nil))
	require.Equal(t, "invalid request payload", formatValidationError(appValidator.FieldErrors{}))
}

func TestValidateStructUsesJSONNames(t *testing.T) {
	type payload struct {
		Email string `json:"email" validate:"required,email"`
	}

	err := appValidator.ValidateStruct(&payload{Email: "not-an-email"})
	require.Error(t, err)

	ve, ok := err.(appValidator.FieldErrors)
	require.True(t, ok)
	require.Equal(t, "email", ve[0].Field)
	require.Equal(t, "email", ve[0].Tag)
}
