package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserValidate(t *testing.T) {
	base := User{Name: "Ana", Email: "ana@x.com", Phone: "11999999999", City: "SP", Age: 30}

	tests := []struct {
		name   string
		mutate func(u *User)
		valid  bool
	}{
		{name: "complete", mutate: func(u *User) {}, valid: true},
		{name: "blank name", mutate: func(u *User) { u.Name = " " }, valid: false},
		{name: "email without at", mutate: func(u *User) { u.Email = "ana.x.com" }, valid: false},
		{name: "empty phone", mutate: func(u *User) { u.Phone = "" }, valid: false},
		{name: "empty city", mutate: func(u *User) { u.City = "" }, valid: false},
		{name: "age zero", mutate: func(u *User) { u.Age = 0 }, valid: false},
		{name: "age 150", mutate: func(u *User) { u.Age = 150 }, valid: false},
		{name: "age 149", mutate: func(u *User) { u.Age = 149 }, valid: true},
		{name: "age 1", mutate: func(u *User) { u.Age = 1 }, valid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := base
			tt.mutate(&u)
			err := u.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, ErrInvalidUser), "got %v", err)
			}
		})
	}
}

func TestUserEqualityUsesEmailKey(t *testing.T) {
	a := User{Name: "Ana", Email: "Ana@X.com"}
	b := User{Name: "Someone else", Email: "  ana@x.com "}
	c := User{Name: "Ana", Email: "bia@x.com"}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.Equal(t, "ana@x.com", a.Normalized().Email)
	assert.True(t, User{}.IsZero())
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
		ok   bool
	}{
		{in: "Show", want: CategoryShow, ok: true},
		{in: "show", want: CategoryShow, ok: true},
		{in: "SPORT", want: CategorySport, ok: true},
		{in: " talk ", want: CategoryTalk, ok: true},
		{in: "party", want: CategoryParty, ok: true},
		{in: "Other", want: CategoryOther, ok: true},
		{in: "", ok: false},
		{in: "concert", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseCategory(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Len(t, Categories(), 5)
	assert.Equal(t, "Talk", CategoryTalk.Label())
	assert.False(t, Category("x").Valid())
}

func TestUserStats(t *testing.T) {
	users := []User{
		{City: "SP", Age: 18},
		{City: "SP", Age: 25},
		{City: "RJ", Age: 26},
		{City: "RJ", Age: 60},
		{City: "BH", Age: 61},
		{City: "SP", Age: 90},
	}

	stats := NewUserStats(users)
	assert.Equal(t, 6, stats.Total)
	assert.Equal(t, map[string]int{"SP": 3, "RJ": 2, "BH": 1}, stats.ByCity)
	assert.Equal(t, 2, stats.YoungCount)
	assert.Equal(t, 2, stats.AdultCount)
	assert.Equal(t, 2, stats.SeniorCount)
	assert.Equal(t, []CityCount{{"SP", 3}, {"RJ", 2}, {"BH", 1}}, stats.CitiesByCount())
	assert.Contains(t, stats.String(), "SP: 3")

	empty := NewUserStats(nil)
	assert.Equal(t, "Total users: 0\n", empty.String())
}
