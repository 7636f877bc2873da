package dto

import (
	apierrors "github.com/upfeed/upfeed/internal/errors"
	"github.com/upfeed/upfeed/internal/models"
)

// UserDTO represents a user's public fields in API responses
type UserDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// UserResponse is the envelope for auth mutations: either the user or a list
// of field errors, never both.
type UserResponse struct {
	Errors []apierrors.FieldError `json:"errors,omitempty"`
	User   *UserDTO               `json:"user"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}
}

// ToPublicUserDTO converts a User model to UserDTO without the email, for
// embedding as a post creator.
func ToPublicUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
	}
}
