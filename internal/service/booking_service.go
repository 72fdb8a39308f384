package service

import (
	"context"
	"time"

	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/metrics"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type BookingService struct {
	repo      domain.Repository
	eventBus  domain.EventPublisher
	sheetName string
	logger    *zerolog.Logger
	now       func() time.Time
}

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, sheetName string, logger *zerolog.Logger) *BookingService {
	if sheetName == "" {
		sheetName = "Bookings"
	}
	return &BookingService{
		repo:      repo,
		eventBus:  eventBus,
		sheetName: sheetName,
		logger:    logger,
		now:       time.Now,
	}
}

// Create stores a WAITING booking of someone else's available item.
func (s *BookingService) Create(ctx context.Context, req models.BookingRequest, callerID int64) (*models.Booking, error) {
	booker, err := findUser(ctx, s.repo, callerID)
	if err != nil {
		return nil, err
	}
	item, err := findItem(ctx, s.repo, req.ItemID)
	if err != nil {
		return nil, err
	}
	if isItemOwner(item, callerID) {
		s.logger.Warn().Int64("item_id", item.ID).Int64("user_id", callerID).Msg("Owner tried to book own item")
		return nil, domain.NotFound("Item with id %d not found", item.ID)
	}
	if !item.Available {
		return nil, domain.NotAvailable("Item with id %d is not available", item.ID)
	}
	if !req.End.After(req.Start) {
		return nil, domain.NotAvailable("Booking end %s must be after start %s",
			req.End.Format(time.RFC3339), req.Start.Format(time.RFC3339))
	}
	if !req.Start.After(s.now()) {
		return nil, domain.BadField("start", "Booking start %s must be in the future", req.Start.Format(time.RFC3339))
	}

	booking := &models.Booking{
		Start:    req.Start,
		End:      req.End,
		ItemID:   item.ID,
		BookerID: booker.ID,
		Status:   models.StatusWaiting,
	}
	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}
	booking.OwnerID, booking.ItemName, booking.BookerName = item.OwnerID, item.Name, booker.Name

	metrics.IncBookingCreated()
	s.logger.Info().Int64("booking_id", booking.ID).Int64("item_id", item.ID).Int64("booker_id", booker.ID).Msg("Booking created")
	s.publishEvent(events.EventBookingCreated, booking)
	return booking, nil
}

// Approve decides a WAITING booking. Only the item owner may decide, and only once.
func (s *BookingService) Approve(ctx context.Context, bookingID, ownerID int64, approved bool) (*models.Booking, error) {
	booking, err := findBooking(ctx, s.repo, bookingID)
	if err != nil {
		return nil, err
	}
	if !canDecideBooking(booking, ownerID) {
		s.logger.Warn().Int64("booking_id", bookingID).Int64("user_id", ownerID).Msg("Booking decision by non-owner")
		return nil, domain.NotFound("Booking with id %d not found", bookingID)
	}
	if booking.Status != models.StatusWaiting {
		return nil, domain.NotAvailable("Booking with id %d is already %s", bookingID, booking.Status)
	}

	target := models.StatusRejected
	if approved {
		target = models.StatusApproved
	}
	// The store re-checks WAITING, so a concurrent decision loses here.
	if err := s.repo.UpdateBookingStatusFrom(ctx, bookingID, models.StatusWaiting, target); err != nil {
		return nil, err
	}
	booking.Status = target

	metrics.IncBookingDecision(approved)
	s.logger.Info().Int64("booking_id", bookingID).Str("status", string(target)).Msg("Booking decided")

	eventType := events.EventBookingRejected
	if approved {
		eventType = events.EventBookingApproved
	}
	s.publishEvent(eventType, booking)
	return booking, nil
}

func (s *BookingService) GetByID(ctx context.Context, bookingID, callerID int64) (*models.Booking, error) {
	booking, err := findBooking(ctx, s.repo, bookingID)
	if err != nil {
		return nil, err
	}
	if !canViewBooking(booking, callerID) {
		return nil, domain.NotFound("Booking with id %d not found", bookingID)
	}
	return booking, nil
}

func (s *BookingService) ListByBooker(ctx context.Context, callerID int64, state models.State, from, size int) ([]*models.Booking, error) {
	return s.list(ctx, models.BookingFilter{BookerID: callerID, State: state}, from, size)
}

func (s *BookingService) ListByOwner(ctx context.Context, callerID int64, state models.State, from, size int) ([]*models.Booking, error) {
	return s.list(ctx, models.BookingFilter{OwnerID: callerID, State: state}, from, size)
}

func (s *BookingService) list(ctx context.Context, filter models.BookingFilter, from, size int) ([]*models.Booking, error) {
	page, err := domain.NewPage(from, size)
	if err != nil {
		return nil, err
	}
	userID := filter.BookerID + filter.OwnerID
	if _, err := findUser(ctx, s.repo, userID); err != nil {
		return nil, err
	}
	filter.Now = s.now()
	return s.repo.FindBookings(ctx, filter, page)
}

func (s *BookingService) publishEvent(eventType string, b *models.Booking) {
	publish(s.logger, s.eventBus, eventType, events.BookingEventPayload{
		BookingID:  b.ID,
		ItemID:     b.ItemID,
		ItemName:   b.ItemName,
		OwnerID:    b.OwnerID,
		BookerID:   b.BookerID,
		BookerName: b.BookerName,
		Status:     string(b.Status),
		Start:      b.Start,
		End:        b.End,
	})
}
