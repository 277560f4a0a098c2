package models

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

type Author struct {
	bun.BaseModel `bun:"table:authors,alias:a"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Biography string    `json:"biography"`
	BookCount *int      `bun:",scanonly" json:"book_count,omitempty"`

	Books []*Book `bun:"rel:has-many,join:id=author_id" json:"books,omitempty"`
}

func (a *Author) FullName() string {
	return joinName(a.FirstName, a.LastName)
}

func joinName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}
