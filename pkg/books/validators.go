package books

type CreateBookPayload struct {
	Title       string `json:"title" mod:"trim" validate:"required,max=200"`
	AuthorID    int    `json:"author_id" validate:"required,min=1"`
	Genre       string `json:"genre" mod:"trim" validate:"required,max=100"`
	Description string `json:"description" mod:"trim"`
	CoverURL    string `json:"cover_url" mod:"trim" validate:"url"`
	ExternalRef string `json:"external_ref" mod:"trim" validate:"max=50"`
}

// UpdateBookPayload changes only the fields that are present.
type UpdateBookPayload struct {
	Title       *string `json:"title" validate:"omitnil,notblank,max=200"`
	AuthorID    *int    `json:"author_id" validate:"omitempty,min=1"`
	Genre       *string `json:"genre" validate:"omitnil,notblank,max=100"`
	Description *string `json:"description"`
	CoverURL    *string `json:"cover_url" validate:"omitempty,url"`
	ExternalRef *string `json:"external_ref" validate:"omitempty,max=50"`
}

type SearchQuery struct {
	Q string `query:"q" mod:"trim"`
}

type GenreList struct {
	TotalGenres int      `json:"total_genres"`
	Genres      []string `json:"genres"`
}
