package service

import (
	"testing"
	"time"

	"shareit/internal/domain"
	"shareit/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCommentService_Eligibility(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner")
	booker := env.user(t, "booker")
	item := env.item(t, owner.ID, "Drill", true)

	b := env.booking(t, item.ID, booker.ID, time.Hour, 2*time.Hour)

	t.Run("WaitingBookingNotEnough", func(t *testing.T) {
		env.now = env.now.Add(3 * time.Hour)
		_, err := env.comments.Add(env.ctx, item.ID, booker.ID, "Great")
		requireKind(t, err, domain.ErrNotAvailable)
		env.now = env.now.Add(-3 * time.Hour)
	})

	_, err := env.bookings.Approve(env.ctx, b.ID, owner.ID, true)
	require.NoError(t, err)

	t.Run("RentalNotComplete", func(t *testing.T) {
		_, err := env.comments.Add(env.ctx, item.ID, booker.ID, "Great")
		requireKind(t, err, domain.ErrNotAvailable)
	})

	env.now = env.now.Add(3 * time.Hour)

	t.Run("OwnerNeverRented", func(t *testing.T) {
		_, err := env.comments.Add(env.ctx, item.ID, owner.ID, "Mine")
		requireKind(t, err, domain.ErrNotAvailable)
	})

	t.Run("Success", func(t *testing.T) {
		c, err := env.comments.Add(env.ctx, item.ID, booker.ID, "Great")
		require.NoError(t, err)
		assert.Equal(t, "booker", c.AuthorName)
		assert.Equal(t, env.now, c.Created)
		env.pub.AssertCalled(t, "PublishJSON", events.EventCommentAdded, mock.Anything)

		list, err := env.comments.ListByItem(env.ctx, item.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, c.ID, list[0].ID)
	})
}

func TestCommentService_Errors(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner")
	item := env.item(t, owner.ID, "Drill", true)

	_, err := env.comments.Add(env.ctx, item.ID, 99, "Hi")
	requireKind(t, err, domain.ErrNotFound)

	_, err = env.comments.Add(env.ctx, 99, owner.ID, "Hi")
	requireKind(t, err, domain.ErrNotFound)

	_, err = env.comments.Add(env.ctx, item.ID, owner.ID, " ")
	requireKind(t, err, domain.ErrBadRequest)
	assert.Equal(t, "text", domain.FieldOf(err))

	_, err = env.comments.ListByItem(env.ctx, 99)
	requireKind(t, err, domain.ErrNotFound)
}
