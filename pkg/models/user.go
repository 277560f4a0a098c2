package models

import (
	"time"

	"github.com/uptrace/bun"
)

// User is a reader. Users own Rating and UserLibrary rows.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int       `bun:",pk,nullzero" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Name         string    `json:"name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose password hash
	IsActive     bool      `json:"is_active"`

	// Relations
	Ratings   []*Rating      `bun:"rel:has-many,join:id=user_id" json:"ratings,omitempty"`
	Libraries []*UserLibrary `bun:"rel:has-many,join:id=user_id" json:"library,omitempty"`
}

// FullName joins first and last name the way the UI displays it.
func (u *User) FullName() string {
	return joinName(u.Name, u.LastName)
}
