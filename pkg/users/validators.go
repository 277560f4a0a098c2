package users

import "github.com/booketlist/booketlist/pkg/models"

// UpdateProfilePayload accepts any subset of the profile fields.
type UpdateProfilePayload struct {
	Username *string `json:"username" mod:"trim" validate:"omitnil,notblank,max=100"`
	LastName *string `json:"last_name" mod:"trim" validate:"omitnil,max=100"`
	Email    *string `json:"email" mod:"trim,lcase" validate:"omitnil,email,max=120"`
	Password *string `json:"password" validate:"omitnil,min=6,max=72"`
}

type profileInfo struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	LastName string `json:"last_name"`
	Email    string `json:"email"`
}

type userResponse struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}
