package domain

import (
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// validatorInstance returns the shared validator with the domain rules
// registered:
//
//	phone    exactly PhoneLength characters
//	tokenid  exactly TokenIDLength characters
func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return IsValidPhone(fl.Field().String())
		})
		v.RegisterValidation("tokenid", func(fl validator.FieldLevel) bool {
			return IsValidTokenID(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// Validate checks the `validate` struct tags of v.
func Validate(v any) error {
	return validatorInstance().Struct(v)
}

// IsValidPhone reports whether s is a well-formed (already trimmed) phone.
func IsValidPhone(s string) bool {
	return utf8.RuneCountInString(s) == PhoneLength
}

// IsValidTokenID reports whether s has the length of a token id.
func IsValidTokenID(s string) bool {
	return utf8.RuneCountInString(s) == TokenIDLength
}
