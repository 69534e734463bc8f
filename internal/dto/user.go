// Package dto holds the explicit response schemas of the API. Models never
// reach the wire directly.
package dto

import (
	"time"

	"github.com/myokr/okr-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID         uint64      `json:"id"`
	Email      string      `json:"email"`
	Name       string      `json:"name"`
	Role       models.Role `json:"role"`
	IsVerified bool        `json:"isVerified"`
	TeamID     *uint64     `json:"teamId"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:         user.ID,
		Email:      user.Email,
		Name:       user.Name,
		Role:       user.Role,
		IsVerified: user.IsVerified,
		TeamID:     user.TeamID,
		CreatedAt:  user.CreatedAt,
	}
}

// ToUserDTOs converts a slice of users.
func ToUserDTOs(users []models.User) []UserDTO {
	out := make([]UserDTO, len(users))
	for i, u := range users {
		out[i] = ToUserDTO(u)
	}
	return out
}
