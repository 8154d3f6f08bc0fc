package auth

import (
	"github.com/edelguur/admin-backend/internal/users"
)

// MinPasswordLength is the shortest password register accepts.
const MinPasswordLength = 6

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Name     string  `json:"name" validate:"required"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6"`
	Phone    *string `json:"phone,omitempty"`
}

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries the refresh token paired with the presented access token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Message      string         `json:"message"`
	User         *users.UserDTO `json:"user"`
	Token        string         `json:"token"`
	RefreshToken string         `json:"refresh_token"`
}

// TokenPair is returned by refresh.
type TokenPair struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}
