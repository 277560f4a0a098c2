package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	MinScore = 1
	MaxScore = 5
)

// Rating records that a user read a book, with a score and an optional review.
// There is at most one per (user, book).
type Rating struct {
	bun.BaseModel `bun:"table:ratings,alias:r"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    int       `json:"user_id"`
	User      *User     `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	BookID    int       `json:"book_id"`
	Book      *Book     `bun:"rel:belongs-to,join:book_id=id" json:"book,omitempty"`
	Score     int       `json:"score"`
	Review    *string   `json:"review"`
}
