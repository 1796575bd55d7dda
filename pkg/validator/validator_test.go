package validator

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

type signupForm struct {
	Username        string `form:"username" validate:"required,min=4"`
	Email           string `form:"email" validate:"required,email"`
	Password        string `form:"password" validate:"required,min=6"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password"`
}

func newValidate() *validator.Validate {
	v := validator.New()
	Init(v)
	return v
}

func TestFieldErrorsUsesFormNames(t *testing.T) {
	v := newValidate()

	err := v.Struct(signupForm{Email: "nope", Password: "secret1", ConfirmPassword: "secret2"})
	fields := FieldErrors(err)

	assert.Equal(t, "this field is required", fields["username"])
	assert.Contains(t, fields, "email")
	assert.Equal(t, "confirm_password does not match", fields["confirm_password"])
	assert.NotContains(t, fields, "password")
}

func TestFieldErrorsNonValidation(t *testing.T) {
	assert.Nil(t, FieldErrors(nil))
	assert.Equal(t, map[string]string{"": "boom"}, FieldErrors(errors.New("boom")))
}

func TestFormatValidationError(t *testing.T) {
	v := newValidate()
	err := v.Struct(signupForm{Username: "abcd", Email: "a@b.co", Password: "secret1", ConfirmPassword: "secret1"})
	assert.NoError(t, err)

	err = v.Struct(signupForm{Username: "abcd", Email: "a@b.co", Password: "secret1"})
	assert.Equal(t, "confirm_password: this field is required", FormatValidationError(err))
}
