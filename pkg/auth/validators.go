package auth

import "github.com/booketlist/booketlist/pkg/models"

// RegisterPayload represents the sign-up request body.
type RegisterPayload struct {
	Username string `json:"username" mod:"trim" validate:"required,max=100"`
	LastName string `json:"last_name" mod:"trim" validate:"max=100"`
	Email    string `json:"email" mod:"trim,lcase" validate:"required,email,max=120"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginPayload represents the login request body for users and admins.
type LoginPayload struct {
	Email    string `json:"email" mod:"trim,lcase" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserTokenResponse is returned by register and login.
type UserTokenResponse struct {
	Message     string       `json:"message"`
	AccessToken string       `json:"access_token"`
	User        *models.User `json:"user"`
}

// AdminTokenResponse is returned by admin login.
type AdminTokenResponse struct {
	Message     string        `json:"message"`
	AccessToken string        `json:"access_token"`
	Admin       *models.Admin `json:"admin"`
}
