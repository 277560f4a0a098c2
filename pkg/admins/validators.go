package admins

import "github.com/booketlist/booketlist/pkg/models"

type CreateAdminPayload struct {
	Name     string `json:"name" mod:"trim" validate:"required,max=100"`
	Email    string `json:"email" mod:"trim,lcase" validate:"required,email,max=120"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type adminResponse struct {
	Message string        `json:"message"`
	Admin   *models.Admin `json:"admin"`
}
