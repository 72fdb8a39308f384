package models

import "time"

// ItemRequest is an open ask for an item nobody has listed yet.
type ItemRequest struct {
	ID          int64     `json:"id" db:"id"`
	Description string    `json:"description" db:"description"`
	RequesterID int64     `json:"requesterId" db:"requester_id"`
	Created     time.Time `json:"created" db:"created"`
}

// ItemRequestResponse is a request together with the items created to fulfil it.
type ItemRequestResponse struct {
	ItemRequest
	Items []Item `json:"items"`
}
