package library

import "github.com/booketlist/booketlist/pkg/models"

type AddEntryPayload struct {
	BookID int    `json:"book_id" validate:"required,min=1"`
	Status string `json:"status" mod:"trim" default:"want_to_read" validate:"oneof=want_to_read reading"`
}

type UpdateEntryPayload struct {
	Status string `json:"status" mod:"trim" validate:"required,oneof=want_to_read reading"`
}

type CreateRatingPayload struct {
	Score  int     `json:"score" validate:"required,min=1,max=5"`
	Review *string `json:"review"`
}

type UpdateRatingPayload struct {
	Score  *int    `json:"score" validate:"omitnil,min=1,max=5"`
	Review *string `json:"review"`
}

type entryResponse struct {
	Message string              `json:"message"`
	Entry   *models.UserLibrary `json:"entry"`
}

type ratingResponse struct {
	Message string         `json:"message"`
	Rating  *models.Rating `json:"rating"`
	// LibraryEntryRemoved is set when rating the book took it off the shelf.
	LibraryEntryRemoved bool `json:"library_entry_removed,omitempty"`
}
