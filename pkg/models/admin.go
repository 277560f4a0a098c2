package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Admin is an operator account. It isn't related to User; a token is admin
// only if an active Admin row exists for its subject.
type Admin struct {
	bun.BaseModel `bun:"table:admins,alias:adm"`

	ID           int       `bun:",pk,nullzero" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
}
