package models

import "time"

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusWaiting  Status = "WAITING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// IsTerminal reports whether no further transition is allowed out of s.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Booking is a time-bound rental of an item by a booker.
// OwnerID, ItemName and BookerName are read-side join fields and are not persisted.
type Booking struct {
	ID         int64     `db:"id"`
	Start      time.Time `db:"start_time"`
	End        time.Time `db:"end_time"`
	ItemID     int64     `db:"item_id"`
	BookerID   int64     `db:"booker_id"`
	Status     Status    `db:"status"`
	OwnerID    int64     `db:"owner_id"`
	ItemName   string    `db:"item_name"`
	BookerName string    `db:"booker_name"`
}

// BookingRequest is the input of a new booking.
type BookingRequest struct {
	ItemID int64
	Start  time.Time
	End    time.Time
}

// BookingFilter selects bookings either by booker or by item owner.
// Exactly one of BookerID and OwnerID is expected to be set.
type BookingFilter struct {
	BookerID int64
	OwnerID  int64
	State    State
	Now      time.Time
}

// BookingResponse is the outward representation of a booking.
type BookingResponse struct {
	ID     int64       `json:"id"`
	Start  time.Time   `json:"start"`
	End    time.Time   `json:"end"`
	Status Status      `json:"status"`
	Booker UserSummary `json:"booker"`
	Item   ItemSummary `json:"item"`
}

// NewBookingResponse maps a booking with its join fields into a response.
func NewBookingResponse(b *Booking) BookingResponse {
	return BookingResponse{
		ID:     b.ID,
		Start:  b.Start,
		End:    b.End,
		Status: b.Status,
		Booker: UserSummary{ID: b.BookerID, Name: b.BookerName},
		Item:   ItemSummary{ID: b.ItemID, Name: b.ItemName},
	}
}

// NewBookingResponses maps a slice of bookings, never returning nil.
func NewBookingResponses(bookings []*Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, NewBookingResponse(b))
	}
	return out
}

// BookingShort is the booking reference shown on an item card.
type BookingShort struct {
	ID       int64     `json:"id"`
	BookerID int64     `json:"bookerId"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

// ShortBooking returns nil for a nil booking.
func ShortBooking(b *Booking) *BookingShort {
	if b == nil {
		return nil
	}
	return &BookingShort{ID: b.ID, BookerID: b.BookerID, Start: b.Start, End: b.End}
}
