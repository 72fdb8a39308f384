package domain

import "shareit/internal/models"

// NewPage validates an offset/size pair and converts it to a page.
// The page number is from/size, so offsets that are not a multiple of
// size snap down to the start of their page.
func NewPage(from, size int) (models.Page, error) {
	if from < 0 {
		return models.Page{}, BadField("from", "from must not be negative, got %d", from)
	}
	if size <= 0 {
		return models.Page{}, BadField("size", "size must be positive, got %d", size)
	}
	number := 0
	if from != 0 {
		number = from / size
	}
	return models.Page{Number: number, Size: size}, nil
}

// ParseState converts a listing filter token, rejecting unknown ones.
func ParseState(token string) (models.State, error) {
	state, ok := models.StateFromString(token)
	if !ok {
		return 0, BadField("state", "Unknown state: %s", token)
	}
	return state, nil
}
