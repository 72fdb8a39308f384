package models

// Item is a thing a user offers for rent.
type Item struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
	Available   bool   `json:"available" db:"available"`
	OwnerID     int64  `json:"ownerId" db:"owner_id"`
	RequestID   *int64 `json:"requestId,omitempty" db:"request_id"`
}

// ItemCreate holds the input of a new catalog entry.
type ItemCreate struct {
	Name        string
	Description string
	Available   bool
	RequestID   *int64
}

// ItemPatch carries the fields of a partial item update.
type ItemPatch struct {
	Name        *string
	Description *string
	Available   *bool
}

func (p ItemPatch) Apply(it *Item) {
	if p.Name != nil {
		it.Name = *p.Name
	}
	if p.Description != nil {
		it.Description = *p.Description
	}
	if p.Available != nil {
		it.Available = *p.Available
	}
}

// ItemSummary is the short item form embedded into booking responses.
type ItemSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ItemDetails is an item together with its comments and, for the owner,
// the nearest past and upcoming bookings.
type ItemDetails struct {
	Item
	LastBooking *BookingShort `json:"lastBooking"`
	NextBooking *BookingShort `json:"nextBooking"`
	Comments    []Comment     `json:"comments"`
}
