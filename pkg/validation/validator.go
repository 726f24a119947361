package validation

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

const (
	MinMemberAge = 13
	MaxMemberAge = 120

	minPhoneDigits = 10
	maxPhoneDigits = 11
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	nonDigits    = regexp.MustCompile(`\D`)
)

type Validator struct {
	validate *validator.Validate
}

// New returns a validator with the project's custom tags registered:
// notblank, contact_email, phone and member_age.
func New() *Validator {
	v := validator.New()

	v.RegisterValidation("notblank", validators.NotBlank)
	v.RegisterValidation("contact_email", validateEmail)
	v.RegisterValidation("phone", validatePhone)
	v.RegisterValidation("member_age", validateMemberAge)

	return &Validator{
		validate: v,
	}
}

func (v *Validator) Struct(s interface{}) error {
	return v.validate.Struct(s)
}

func (v *Validator) Var(field interface{}, tag string) error {
	return v.validate.Var(field, tag)
}

func (v *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return v.validate.RegisterValidation(tag, fn)
}

// IsEmail reports whether s looks like local@domain.tld.
func IsEmail(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	return emailPattern.MatchString(s)
}

// IsPhone reports whether s holds 10 or 11 digits once every non-digit is removed.
func IsPhone(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	digits := nonDigits.ReplaceAllString(s, "")
	return len(digits) >= minPhoneDigits && len(digits) <= maxPhoneDigits
}

func IsMemberAge(age int) bool {
	return age >= MinMemberAge && age <= MaxMemberAge
}

func validateEmail(fl validator.FieldLevel) bool {
	return IsEmail(fl.Field().String())
}

func validatePhone(fl validator.FieldLevel) bool {
	return IsPhone(fl.Field().String())
}

func validateMemberAge(fl validator.FieldLevel) bool {
	return IsMemberAge(int(fl.Field().Int()))
}
