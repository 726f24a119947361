package api

import (
	"fmt"
	"net/http"

	"cityevents/internal/domain"
	"cityevents/pkg/logger"
	"cityevents/pkg/validation"
)

// userRequest is the registration and update body. It carries the contact
// rules a stored record alone does not enforce.
type userRequest struct {
	Name  string `json:"name" validate:"notblank"`
	Email string `json:"email" validate:"contact_email"`
	Phone string `json:"phone" validate:"phone"`
	City  string `json:"city" validate:"notblank"`
	Age   int    `json:"age" validate:"member_age"`
}

func (req userRequest) toUser() domain.User {
	return domain.User{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		City:  req.City,
		Age:   req.Age,
	}
}

func validateRequest(w http.ResponseWriter, r *http.Request, v *validation.Validator, log logger.Logger, req interface{}) bool {
	if err := v.Struct(req); err != nil {
		writeError(w, r, log, "request rejected", fmt.Errorf("%w: %v", domain.ErrInvalidUser, err))
		return false
	}
	return true
}
