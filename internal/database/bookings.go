package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"
)

const bookingSelect = `SELECT b.id, b.start_time, b.end_time, b.item_id, b.booker_id, b.status,
		i.owner_id, i.name AS item_name, COALESCE(u.name, '') AS booker_name
	FROM bookings b
	JOIN items i ON i.id = b.item_id
	LEFT JOIN users u ON u.id = b.booker_id`

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	booking.Start = utc(booking.Start)
	booking.End = utc(booking.End)
	err := db.insert(ctx, &booking.ID,
		`INSERT INTO bookings (start_time, end_time, item_id, booker_id, status) VALUES (?, ?, ?, ?, ?)`,
		booking.Start, booking.End, booking.ItemID, booking.BookerID, booking.Status)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	var booking models.Booking
	if err := db.get(ctx, &booking, bookingSelect+` WHERE b.id = ?`, id); err != nil {
		return nil, notFound(err, "booking", id)
	}
	return &booking, nil
}

// UpdateBookingStatusFrom performs a compare-and-set on the booking status.
func (db *DB) UpdateBookingStatusFrom(ctx context.Context, id int64, from, to models.Status) error {
	res, err := db.exec(ctx, `UPDATE bookings SET status = ? WHERE id = ? AND status = ?`, to, id, from)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if err := expectRow(res, "booking", id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("booking %d is no longer %s: %w", id, from, domain.ErrNotAvailable)
		}
		return err
	}
	return nil
}

func (db *DB) FindBookings(ctx context.Context, filter models.BookingFilter, page models.Page) ([]*models.Booking, error) {
	where, args, err := bookingConditions(filter)
	if err != nil {
		return nil, err
	}

	query, extra := paginate(bookingSelect+` WHERE `+strings.Join(where, " AND ")+
		` ORDER BY b.start_time DESC, b.id DESC`, page.Size, page.Offset())

	bookings := []*models.Booking{}
	if err := db.selectAll(ctx, &bookings, query, append(args, extra...)...); err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	return bookings, nil
}

func bookingConditions(filter models.BookingFilter) ([]string, []interface{}, error) {
	var where []string
	var args []interface{}

	switch {
	case filter.BookerID != 0:
		where, args = append(where, "b.booker_id = ?"), append(args, filter.BookerID)
	case filter.OwnerID != 0:
		where, args = append(where, "i.owner_id = ?"), append(args, filter.OwnerID)
	default:
		return nil, nil, errors.New("booking filter needs a booker or an owner")
	}

	now := utc(filter.Now)
	switch filter.State {
	case models.StateAll:
	case models.StateCurrent:
		where, args = append(where, "b.start_time <= ?", "b.end_time > ?"), append(args, now, now)
	case models.StatePast:
		where, args = append(where, "b.end_time < ?"), append(args, now)
	case models.StateFuture:
		where, args = append(where, "b.start_time > ?"), append(args, now)
	case models.StateWaiting:
		where, args = append(where, "b.status = ?"), append(args, models.StatusWaiting)
	case models.StateRejected:
		where, args = append(where, "b.status = ?"), append(args, models.StatusRejected)
	default:
		return nil, nil, fmt.Errorf("unsupported booking state %v", filter.State)
	}
	return where, args, nil
}

func (db *DB) HasCompletedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error) {
	var count int
	err := db.get(ctx, &count,
		`SELECT COUNT(*) FROM bookings WHERE booker_id = ? AND item_id = ? AND status = ? AND end_time < ?`,
		bookerID, itemID, models.StatusApproved, utc(now))
	if err != nil {
		return false, fmt.Errorf("failed to check completed bookings: %w", err)
	}
	return count > 0, nil
}

// GetLastBooking returns the non-rejected booking that started before now with the latest end.
func (db *DB) GetLastBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	return db.firstBooking(ctx, ` WHERE b.item_id = ? AND b.status <> ? AND b.start_time < ?
		ORDER BY b.end_time DESC, b.id DESC LIMIT 1`, itemID, models.StatusRejected, utc(now))
}

// GetNextBooking returns the earliest non-rejected booking starting after now.
func (db *DB) GetNextBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	return db.firstBooking(ctx, ` WHERE b.item_id = ? AND b.status <> ? AND b.start_time > ?
		ORDER BY b.start_time ASC, b.id ASC LIMIT 1`, itemID, models.StatusRejected, utc(now))
}

func (db *DB) firstBooking(ctx context.Context, tail string, args ...interface{}) (*models.Booking, error) {
	bookings := []*models.Booking{}
	if err := db.selectAll(ctx, &bookings, bookingSelect+tail, args...); err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if len(bookings) == 0 {
		return nil, nil
	}
	return bookings[0], nil
}
