package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"
	"shareit/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	_ domain.UserService        = (*UserService)(nil)
	_ domain.ItemService        = (*ItemService)(nil)
	_ domain.ItemRequestService = (*ItemRequestService)(nil)
	_ domain.BookingService     = (*BookingService)(nil)
	_ domain.CommentService     = (*CommentService)(nil)
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}

type testEnv struct {
	ctx      context.Context
	pub      *mockPublisher
	now      time.Time
	users    *UserService
	items    *ItemService
	requests *ItemRequestService
	bookings *BookingService
	comments *CommentService
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithRepo(t, repository.NewMemoryStore())
}

func newTestEnvWithRepo(t *testing.T, repo domain.Repository) *testEnv {
	t.Helper()
	logger := zerolog.New(io.Discard)
	pub := new(mockPublisher)
	pub.On("PublishJSON", mock.Anything, mock.Anything).Return(nil).Maybe()

	env := &testEnv{
		ctx:      context.Background(),
		pub:      pub,
		now:      time.Date(2030, 1, 10, 12, 0, 0, 0, time.UTC),
		users:    NewUserService(repo, &logger),
		items:    NewItemService(repo, &logger),
		requests: NewItemRequestService(repo, pub, &logger),
		bookings: NewBookingService(repo, pub, "", &logger),
		comments: NewCommentService(repo, pub, &logger),
	}
	clock := func() time.Time { return env.now }
	env.items.now = clock
	env.requests.now = clock
	env.bookings.now = clock
	env.comments.now = clock
	return env
}

func (e *testEnv) user(t *testing.T, name string) *models.User {
	t.Helper()
	u, err := e.users.Create(e.ctx, name, name+"@example.com")
	require.NoError(t, err)
	return u
}

func (e *testEnv) item(t *testing.T, ownerID int64, name string, available bool) *models.Item {
	t.Helper()
	it, err := e.items.Create(e.ctx, ownerID, models.ItemCreate{Name: name, Description: name + " for rent", Available: available})
	require.NoError(t, err)
	return it
}

func (e *testEnv) booking(t *testing.T, itemID, bookerID int64, start, end time.Duration) *models.Booking {
	t.Helper()
	b, err := e.bookings.Create(e.ctx, models.BookingRequest{ItemID: itemID, Start: e.now.Add(start), End: e.now.Add(end)}, bookerID)
	require.NoError(t, err)
	return b
}

func requireKind(t *testing.T, err error, kind error) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, errors.Is(err, kind), "expected %v, got %v", kind, err)
}

// failingStore lets a test break a single store call.
type failingStore struct {
	*repository.MemoryStore
	failUsers bool
}

var errStore = errors.New("store unavailable")

func (f *failingStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	if f.failUsers {
		return nil, errStore
	}
	return f.MemoryStore.GetUserByID(ctx, id)
}
