package service

import "shareit/internal/models"

func isItemOwner(item *models.Item, userID int64) bool {
	return item.OwnerID == userID
}

// canViewBooking limits a booking to its two parties.
func canViewBooking(b *models.Booking, userID int64) bool {
	return b.BookerID == userID || b.OwnerID == userID
}

func canDecideBooking(b *models.Booking, userID int64) bool {
	return b.OwnerID == userID
}
