package domain

import (
	"github.com/go-playground/validator/v10"

	"cityevents/pkg/validation"
)

var validate = newValidator()

func newValidator() *validation.Validator {
	v := validation.New()
	v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return Category(fl.Field().String()).Valid()
	})
	return v
}
