// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/enroll/enroll/internal/model"
)

// RegisterUserRequest represents the request body for registering a user.
type RegisterUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
}

// UserResponse is the public view of a user. It never carries credentials.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// RegisterUserResponse is returned on successful registration.
type RegisterUserResponse struct {
	Message string        `json:"message"`
	User    *UserResponse `json:"user"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

// ToUserResponse converts a UserSummary to a UserResponse DTO.
func ToUserResponse(user *model.UserSummary) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}
