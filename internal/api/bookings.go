package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type bookingRequest struct {
	ItemID int64      `json:"itemId" validate:"required,gt=0"`
	Start  *time.Time `json:"start" validate:"required,future"`
	End    *time.Time `json:"end" validate:"required,future"`
}

func (s *HTTPServer) createBooking(w http.ResponseWriter, r *http.Request) error {
	userID, err := callerID(r)
	if err != nil {
		return err
	}
	var body bookingRequest
	if err := decodeBody(r, &body); err != nil {
		return err
	}
	booking, err := s.svc.Bookings.Create(r.Context(), models.BookingRequest{
		ItemID: body.ItemID,
		Start:  body.Start.UTC(),
		End:    body.End.UTC(),
	}, userID)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, models.NewBookingResponse(booking))
	return nil
}

func (s *HTTPServer) decideBooking(w http.ResponseWriter, r *http.Request) error {
	userID, err := callerID(r)
	if err != nil {
		return err
	}
	bookingID, err := pathID(r, "id")
	if err != nil {
		return err
	}
	approved, err := strconv.ParseBool(r.URL.Query().Get("approved"))
	if err != nil {
		return domain.BadField("approved", "approved must be true or false")
	}
	booking, err := s.svc.Bookings.Approve(r.Context(), bookingID, userID, approved)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, models.NewBookingResponse(booking))
	return nil
}

func (s *HTTPServer) getBooking(w http.ResponseWriter, r *http.Request) error {
	userID, err := callerID(r)
	if err != nil {
		return err
	}
	bookingID, err := pathID(r, "id")
	if err != nil {
		return err
	}
	booking, err := s.svc.Bookings.GetByID(r.Context(), bookingID, userID)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, models.NewBookingResponse(booking))
	return nil
}

func (s *HTTPServer) listBookerBookings(w http.ResponseWriter, r *http.Request) error {
	return s.listBookings(w, r, s.svc.Bookings.ListByBooker)
}

func (s *HTTPServer) listOwnerBookings(w http.ResponseWriter, r *http.Request) error {
	return s.listBookings(w, r, s.svc.Bookings.ListByOwner)
}

type bookingLister func(ctx context.Context, callerID int64, state models.State, from, size int) ([]*models.Booking, error)

// listBookings checks paging, then the state token, then asks the service.
func (s *HTTPServer) listBookings(w http.ResponseWriter, r *http.Request, list bookingLister) error {
	userID, err := callerID(r)
	if err != nil {
		return err
	}
	from, size, err := pageParams(r)
	if err != nil {
		return err
	}
	if _, err := domain.NewPage(from, size); err != nil {
		return err
	}
	state, err := stateParam(r)
	if err != nil {
		return err
	}
	bookings, err := list(r.Context(), userID, state, from, size)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, models.NewBookingResponses(bookings))
	return nil
}

func (s *HTTPServer) exportOwnerBookings(w http.ResponseWriter, r *http.Request) error {
	userID, err := callerID(r)
	if err != nil {
		return err
	}
	state, err := stateParam(r)
	if err != nil {
		return err
	}
	data, err := s.svc.Bookings.ExportOwnerBookings(r.Context(), userID, state)
	if err != nil {
		return err
	}

	filename := fmt.Sprintf("bookings_%d_%s.xlsx", userID, state)
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(data)
	return err
}
