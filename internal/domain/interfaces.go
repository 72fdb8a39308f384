package domain

import (
	"context"
	"time"

	"shareit/internal/models"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error
}

type ItemRepository interface {
	CreateItem(ctx context.Context, item *models.Item) error
	GetItemByID(ctx context.Context, id int64) (*models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) error
	GetItemsByOwner(ctx context.Context, ownerID int64, page models.Page) ([]*models.Item, error)
	SearchItems(ctx context.Context, text string, page models.Page) ([]*models.Item, error)
	GetItemsByRequestIDs(ctx context.Context, requestIDs []int64) ([]*models.Item, error)
}

type BookingRepository interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	// GetBooking returns the booking with its owner, item and booker join fields.
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	// UpdateBookingStatusFrom moves a booking from one status to another and
	// fails with ErrNotAvailable when the booking is no longer in status from.
	UpdateBookingStatusFrom(ctx context.Context, id int64, from, to models.Status) error
	FindBookings(ctx context.Context, filter models.BookingFilter, page models.Page) ([]*models.Booking, error)
	HasCompletedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error)
	// GetLastBooking and GetNextBooking return nil without error when nothing matches.
	GetLastBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)
	GetNextBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)
}

type ItemRequestRepository interface {
	CreateRequest(ctx context.Context, req *models.ItemRequest) error
	GetRequestByID(ctx context.Context, id int64) (*models.ItemRequest, error)
	GetRequestsByRequester(ctx context.Context, requesterID int64) ([]*models.ItemRequest, error)
	GetRequestsExcept(ctx context.Context, userID int64, page models.Page) ([]*models.ItemRequest, error)
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentsByItem(ctx context.Context, itemID int64) ([]*models.Comment, error)
}

// Repository is the full store used by the services.
type Repository interface {
	UserRepository
	ItemRepository
	BookingRepository
	ItemRequestRepository
	CommentRepository
	Ping(ctx context.Context) error
}

type RateLimiter interface {
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type UserService interface {
	Create(ctx context.Context, name, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetAll(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}

type ItemService interface {
	Create(ctx context.Context, ownerID int64, in models.ItemCreate) (*models.Item, error)
	Update(ctx context.Context, itemID, callerID int64, patch models.ItemPatch) (*models.Item, error)
	GetByID(ctx context.Context, itemID, callerID int64) (*models.ItemDetails, error)
	GetAllByOwner(ctx context.Context, ownerID int64, from, size int) ([]*models.ItemDetails, error)
	Search(ctx context.Context, text string, from, size int) ([]*models.Item, error)
}

type ItemRequestService interface {
	Create(ctx context.Context, userID int64, description string) (*models.ItemRequestResponse, error)
	GetAllByUser(ctx context.Context, userID int64) ([]*models.ItemRequestResponse, error)
	GetAll(ctx context.Context, from, size int, userID int64) ([]*models.ItemRequestResponse, error)
	GetByID(ctx context.Context, requestID, userID int64) (*models.ItemRequestResponse, error)
}

type BookingService interface {
	Create(ctx context.Context, req models.BookingRequest, callerID int64) (*models.Booking, error)
	Approve(ctx context.Context, bookingID, ownerID int64, approved bool) (*models.Booking, error)
	GetByID(ctx context.Context, bookingID, callerID int64) (*models.Booking, error)
	ListByBooker(ctx context.Context, callerID int64, state models.State, from, size int) ([]*models.Booking, error)
	ListByOwner(ctx context.Context, callerID int64, state models.State, from, size int) ([]*models.Booking, error)
	ExportOwnerBookings(ctx context.Context, ownerID int64, state models.State) ([]byte, error)
}

type CommentService interface {
	Add(ctx context.Context, itemID, authorID int64, text string) (*models.Comment, error)
	ListByItem(ctx context.Context, itemID int64) ([]*models.Comment, error)
}
