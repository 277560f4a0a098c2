package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	ReadingStatusWantToRead = "want_to_read"
	ReadingStatusReading    = "reading"
)

// ReadingStatuses lists every status a UserLibrary row can hold, in display
// order.
var ReadingStatuses = []string{ReadingStatusWantToRead, ReadingStatusReading}

// UserLibrary is a book on a user's shelf that they haven't rated yet. There is
// at most one per (user, book).
type UserLibrary struct {
	bun.BaseModel `bun:"table:user_libraries,alias:ul"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    int       `json:"user_id"`
	User      *User     `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	BookID    int       `json:"book_id"`
	Book      *Book     `bun:"rel:belongs-to,join:book_id=id" json:"book,omitempty"`
	Status    string    `json:"status"`
}
