package authors

type CreateAuthorPayload struct {
	FirstName string `json:"first_name" mod:"trim" validate:"required,max=100"`
	LastName  string `json:"last_name" mod:"trim" validate:"max=100"`
	Biography string `json:"biography" mod:"trim"`
}

// UpdateAuthorPayload changes only the fields that are present.
type UpdateAuthorPayload struct {
	FirstName *string `json:"first_name" validate:"omitnil,notblank,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,max=100"`
	Biography *string `json:"biography"`
}

type SearchQuery struct {
	Q string `query:"q" mod:"trim"`
}
