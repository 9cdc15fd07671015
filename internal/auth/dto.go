package auth

import (
	"github.com/muhammed1675/LAUTECH-Rentals/internal/users"
)

// RegisterRequest contains the payload required to create an account.
type RegisterRequest struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned on successful authentication.
type LoginResponse struct {
	AccessToken string         `json:"access_token"`
	User        *users.UserDTO `json:"user"`
}

// Profile combines the account with its wallet balance.
type Profile struct {
	User         *users.UserDTO `json:"user"`
	TokenBalance int            `json:"token_balance"`
}
