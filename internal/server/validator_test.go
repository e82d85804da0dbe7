package server

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registerPayload struct {
	Username string `json:"username" validate:"required,min=3,max=32,handle"`
	Email    string `json:"email" validate:"required,email"`
}

// TestValidatorHandle проверяет допустимые символы имени пользователя.
func TestValidatorHandle(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Validate(registerPayload{Username: "spark_user-1", Email: "a@b.io"}))
	assert.Error(t, v.Validate(registerPayload{Username: "spark user", Email: "a@b.io"}))
	assert.Error(t, v.Validate(registerPayload{Username: "ab", Email: "a@b.io"}))
}

// TestValidatorUsesJSONNames проверяет, что ошибки называют поля по json-тегам.
func TestValidatorUsesJSONNames(t *testing.T) {
	err := NewValidator().Validate(registerPayload{Username: "spark", Email: "nope"})
	require.Error(t, err)

	var fieldErrors validator.ValidationErrors
	require.True(t, errors.As(err, &fieldErrors))
	require.Len(t, fieldErrors, 1)
	assert.Equal(t, "email", fieldErrors[0].Field())
	assert.Equal(t, "email", fieldErrors[0].Tag())
}
