package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID          int       `bun:",pk,nullzero" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Title       string    `json:"title"`
	Genre       string    `json:"genre"`
	Description string    `json:"description"`
	CoverURL    string    `json:"cover_url"`
	ExternalRef string    `json:"external_ref"`
	AuthorID    int       `json:"author_id"`
	Author      *Author   `bun:"rel:belongs-to,join:author_id=id" json:"author,omitempty"`
}
