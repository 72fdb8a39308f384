package repository

import (
	"context"
	"testing"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ domain.Repository = (*MemoryStore)(nil)

func TestMemoryStoreUsers(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	ann := &models.User{Name: "Ann", Email: "ann@example.com"}
	bob := &models.User{Name: "Bob", Email: "bob@example.com"}
	require.NoError(t, s.CreateUser(ctx, ann))
	require.NoError(t, s.CreateUser(ctx, bob))
	assert.Equal(t, int64(1), ann.ID)
	assert.Equal(t, int64(2), bob.ID)

	assert.ErrorIs(t, s.CreateUser(ctx, &models.User{Name: "X", Email: "ann@example.com"}), domain.ErrConflict)

	bob.Email = "ann@example.com"
	assert.ErrorIs(t, s.UpdateUser(ctx, bob), domain.ErrConflict)

	// the stored copy is untouched by the failed update
	stored, err := s.GetUserByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", stored.Email)

	byEmail, err := s.GetUserByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, ann.ID, byEmail.ID)

	users, err := s.GetAllUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, ann.ID, users[0].ID)

	require.NoError(t, s.DeleteUser(ctx, ann.ID))
	assert.ErrorIs(t, s.DeleteUser(ctx, ann.ID), domain.ErrNotFound)
	_, err = s.GetUserByID(ctx, ann.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryStoreItemsAndSearch(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	reqID := int64(7)
	drill := &models.Item{Name: "Drill", Description: "Cordless", Available: true, OwnerID: 1}
	saw := &models.Item{Name: "Saw", Description: "Hand saw for DRILLing fans", Available: true, OwnerID: 1, RequestID: &reqID}
	hidden := &models.Item{Name: "Drill press", Description: "Heavy", Available: false, OwnerID: 2}
	for _, it := range []*models.Item{drill, saw, hidden} {
		require.NoError(t, s.CreateItem(ctx, it))
	}

	found, err := s.SearchItems(ctx, "drill", models.Unpaged)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, drill.ID, found[0].ID)
	assert.Equal(t, saw.ID, found[1].ID)

	paged, err := s.SearchItems(ctx, "drill", models.Page{Number: 1, Size: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, saw.ID, paged[0].ID)

	beyond, err := s.GetItemsByOwner(ctx, 1, models.Page{Number: 5, Size: 10})
	require.NoError(t, err)
	assert.Empty(t, beyond)

	byReq, err := s.GetItemsByRequestIDs(ctx, []int64{reqID})
	require.NoError(t, err)
	require.Len(t, byReq, 1)
	*byReq[0].RequestID = 99

	again, _ := s.GetItemByID(ctx, saw.ID)
	assert.Equal(t, reqID, *again.RequestID)

	assert.ErrorIs(t, s.UpdateItem(ctx, &models.Item{ID: 42}), domain.ErrNotFound)
}

func TestMemoryStoreBookings(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	owner := &models.User{Name: "Owner", Email: "o@example.com"}
	booker := &models.User{Name: "Booker", Email: "b@example.com"}
	require.NoError(t, s.CreateUser(ctx, owner))
	require.NoError(t, s.CreateUser(ctx, booker))
	item := &models.Item{Name: "Tent", Description: "4 person", Available: true, OwnerID: owner.ID}
	require.NoError(t, s.CreateItem(ctx, item))

	now := time.Date(2030, 1, 10, 12, 0, 0, 0, time.UTC)
	mk := func(start, end time.Duration, status models.Status) *models.Booking {
		b := &models.Booking{Start: now.Add(start), End: now.Add(end), ItemID: item.ID, BookerID: booker.ID, Status: status}
		require.NoError(t, s.CreateBooking(ctx, b))
		return b
	}
	past := mk(-48*time.Hour, -24*time.Hour, models.StatusApproved)
	current := mk(-time.Hour, time.Hour, models.StatusApproved)
	future := mk(24*time.Hour, 48*time.Hour, models.StatusWaiting)
	rejected := mk(72*time.Hour, 96*time.Hour, models.StatusRejected)

	got, err := s.GetBooking(ctx, future.ID)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, got.OwnerID)
	assert.Equal(t, "Tent", got.ItemName)
	assert.Equal(t, "Booker", got.BookerName)

	all, err := s.FindBookings(ctx, models.BookingFilter{OwnerID: owner.ID, State: models.StateAll, Now: now}, models.Unpaged)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, []int64{rejected.ID, future.ID, current.ID, past.ID},
		[]int64{all[0].ID, all[1].ID, all[2].ID, all[3].ID})

	cur, err := s.FindBookings(ctx, models.BookingFilter{BookerID: booker.ID, State: models.StateCurrent, Now: now}, models.Unpaged)
	require.NoError(t, err)
	require.Len(t, cur, 1)
	assert.Equal(t, current.ID, cur[0].ID)

	none, err := s.FindBookings(ctx, models.BookingFilter{BookerID: owner.ID, Now: now}, models.Unpaged)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = s.FindBookings(ctx, models.BookingFilter{Now: now}, models.Unpaged)
	assert.Error(t, err)

	last, err := s.GetLastBooking(ctx, item.ID, now)
	require.NoError(t, err)
	assert.Equal(t, current.ID, last.ID)

	next, err := s.GetNextBooking(ctx, item.ID, now)
	require.NoError(t, err)
	assert.Equal(t, future.ID, next.ID)

	done, err := s.HasCompletedBooking(ctx, booker.ID, item.ID, now)
	require.NoError(t, err)
	assert.True(t, done)

	require.NoError(t, s.UpdateBookingStatusFrom(ctx, future.ID, models.StatusWaiting, models.StatusApproved))
	assert.ErrorIs(t, s.UpdateBookingStatusFrom(ctx, future.ID, models.StatusWaiting, models.StatusRejected), domain.ErrNotAvailable)
}

func TestMemoryStoreRequestsAndComments(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	r1 := &models.ItemRequest{Description: "a", RequesterID: 1, Created: base}
	r2 := &models.ItemRequest{Description: "b", RequesterID: 1, Created: base.Add(time.Hour)}
	r3 := &models.ItemRequest{Description: "c", RequesterID: 2, Created: base.Add(2 * time.Hour)}
	for _, r := range []*models.ItemRequest{r1, r2, r3} {
		require.NoError(t, s.CreateRequest(ctx, r))
	}

	mine, err := s.GetRequestsByRequester(ctx, 1)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, r1.ID, mine[0].ID)

	others, err := s.GetRequestsExcept(ctx, 2, models.Unpaged)
	require.NoError(t, err)
	require.Len(t, others, 2)
	assert.Equal(t, r2.ID, others[0].ID)

	_, err = s.GetRequestByID(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	c2 := &models.Comment{Text: "later", ItemID: 1, Created: base.Add(time.Hour)}
	c1 := &models.Comment{Text: "first", ItemID: 1, Created: base}
	require.NoError(t, s.CreateComment(ctx, c2))
	require.NoError(t, s.CreateComment(ctx, c1))

	comments, err := s.GetCommentsByItem(ctx, 1)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Text)
}
