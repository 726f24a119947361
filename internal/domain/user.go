package domain

import (
	"fmt"
	"strings"
)

type User struct {
	Name  string `json:"name" validate:"notblank"`
	Email string `json:"email" validate:"notblank,contains=@"`
	Phone string `json:"phone" validate:"notblank"`
	City  string `json:"city" validate:"notblank"`
	Age   int    `json:"age" validate:"gt=0,lt=150"`
}

// NormalizeEmail is the key form used for every email lookup and comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Normalized returns a copy of u with its email in key form.
func (u User) Normalized() User {
	u.Email = NormalizeEmail(u.Email)
	return u
}

// Equal reports whether both users share the same email key.
func (u User) Equal(other User) bool {
	return NormalizeEmail(u.Email) == NormalizeEmail(other.Email)
}

func (u User) IsZero() bool {
	return strings.TrimSpace(u.Email) == ""
}

// Validate checks record validity. The stricter email, phone and age rules
// are applied to HTTP request bodies in internal/api through the
// pkg/validation contact_email, phone and member_age tags.
func (u User) Validate() error {
	if err := validate.Struct(u); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidUser, err)
	}
	return nil
}

func (u User) String() string {
	return fmt.Sprintf("User{name=%q, email=%q, phone=%q, city=%q, age=%d}",
		u.Name, u.Email, u.Phone, u.City, u.Age)
}

type UserRepository interface {
	LoadAll() ([]User, error)
	SaveAll(users []User) error
}

type UserService interface {
	Register(user User) error
	Update(user User) error
	Remove(email string) error
	FindByEmail(email string) (User, bool)
	SearchByName(fragment string) []User
	SearchByCity(city string) []User
	ListAll() []User

	Login(email string) error
	Logout()
	CurrentUser() (User, bool)
	IsLoggedIn() bool

	IsValidEmail(email string) bool
	IsValidPhone(phone string) bool
	IsValidAge(age int) bool

	Stats() UserStats
	Count() int
	ClearAll() error
	Save() error
}
