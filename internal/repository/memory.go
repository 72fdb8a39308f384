package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"
)

// MemoryStore is an in-process implementation of domain.Repository.
// Values are copied on the way in and out so callers never share state with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	seq      map[string]int64
	users    map[int64]models.User
	items    map[int64]models.Item
	bookings map[int64]models.Booking
	requests map[int64]models.ItemRequest
	comments map[int64]models.Comment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		seq:      make(map[string]int64),
		users:    make(map[int64]models.User),
		items:    make(map[int64]models.Item),
		bookings: make(map[int64]models.Booking),
		requests: make(map[int64]models.ItemRequest),
		comments: make(map[int64]models.Comment),
	}
}

func (s *MemoryStore) next(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

func (s *MemoryStore) emailTaken(email string, except int64) bool {
	for id, u := range s.users {
		if id != except && u.Email == email {
			return true
		}
	}
	return false
}

func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.emailTaken(user.Email, 0) {
		return domain.Conflict("User with email %s already exists", user.Email)
	}
	user.ID = s.next("users")
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	return &u, nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user with email %s: %w", email, domain.ErrNotFound)
}

func (s *MemoryStore) GetAllUsers(context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		u := u
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) UpdateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return fmt.Errorf("user %d: %w", user.ID, domain.ErrNotFound)
	}
	if s.emailTaken(user.Email, user.ID) {
		return domain.Conflict("User with email %s already exists", user.Email)
	}
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) DeleteUser(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	delete(s.users, id)
	return nil
}

func (s *MemoryStore) CreateItem(_ context.Context, item *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item.ID = s.next("items")
	s.items[item.ID] = copyItem(*item)
	return nil
}

func (s *MemoryStore) GetItemByID(_ context.Context, id int64) (*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("item %d: %w", id, domain.ErrNotFound)
	}
	it = copyItem(it)
	return &it, nil
}

func (s *MemoryStore) UpdateItem(_ context.Context, item *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.items[item.ID]
	if !ok {
		return fmt.Errorf("item %d: %w", item.ID, domain.ErrNotFound)
	}
	stored.Name, stored.Description, stored.Available = item.Name, item.Description, item.Available
	s.items[item.ID] = stored
	return nil
}

func (s *MemoryStore) GetItemsByOwner(_ context.Context, ownerID int64, page models.Page) ([]*models.Item, error) {
	return s.filterItems(page, func(it *models.Item) bool { return it.OwnerID == ownerID }), nil
}

func (s *MemoryStore) SearchItems(_ context.Context, text string, page models.Page) ([]*models.Item, error) {
	needle := strings.ToLower(text)
	return s.filterItems(page, func(it *models.Item) bool {
		return it.Available && (strings.Contains(strings.ToLower(it.Name), needle) ||
			strings.Contains(strings.ToLower(it.Description), needle))
	}), nil
}

func (s *MemoryStore) GetItemsByRequestIDs(_ context.Context, requestIDs []int64) ([]*models.Item, error) {
	wanted := make(map[int64]bool, len(requestIDs))
	for _, id := range requestIDs {
		wanted[id] = true
	}
	return s.filterItems(models.Unpaged, func(it *models.Item) bool {
		return it.RequestID != nil && wanted[*it.RequestID]
	}), nil
}

func (s *MemoryStore) filterItems(page models.Page, keep func(*models.Item) bool) []*models.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Item{}
	for _, it := range s.items {
		it := copyItem(it)
		if keep(&it) {
			out = append(out, &it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return applyPage(out, page)
}

func copyItem(it models.Item) models.Item {
	if it.RequestID != nil {
		id := *it.RequestID
		it.RequestID = &id
	}
	return it
}

func (s *MemoryStore) CreateBooking(_ context.Context, booking *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	booking.ID = s.next("bookings")
	stored := *booking
	stored.OwnerID, stored.ItemName, stored.BookerName = 0, "", ""
	s.bookings[booking.ID] = stored
	return nil
}

// joined fills the read-side fields the relational store gets from joins.
func (s *MemoryStore) joined(b models.Booking) models.Booking {
	it := s.items[b.ItemID]
	b.OwnerID, b.ItemName = it.OwnerID, it.Name
	b.BookerName = s.users[b.BookerID].Name
	return b
}

func (s *MemoryStore) GetBooking(_ context.Context, id int64) (*models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, fmt.Errorf("booking %d: %w", id, domain.ErrNotFound)
	}
	b = s.joined(b)
	return &b, nil
}

func (s *MemoryStore) UpdateBookingStatusFrom(_ context.Context, id int64, from, to models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok || b.Status != from {
		return fmt.Errorf("booking %d is no longer %s: %w", id, from, domain.ErrNotAvailable)
	}
	b.Status = to
	s.bookings[id] = b
	return nil
}

func (s *MemoryStore) FindBookings(_ context.Context, filter models.BookingFilter, page models.Page) ([]*models.Booking, error) {
	if filter.BookerID == 0 && filter.OwnerID == 0 {
		return nil, fmt.Errorf("booking filter needs a booker or an owner")
	}
	match, err := stateMatcher(filter.State, filter.Now)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	out := []*models.Booking{}
	for _, b := range s.bookings {
		b := s.joined(b)
		if filter.BookerID != 0 && b.BookerID != filter.BookerID {
			continue
		}
		if filter.BookerID == 0 && b.OwnerID != filter.OwnerID {
			continue
		}
		if match(&b) {
			out = append(out, &b)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.After(out[j].Start)
		}
		return out[i].ID > out[j].ID
	})
	return applyPage(out, page), nil
}

func stateMatcher(state models.State, now time.Time) (func(*models.Booking) bool, error) {
	switch state {
	case models.StateAll:
		return func(*models.Booking) bool { return true }, nil
	case models.StateCurrent:
		return func(b *models.Booking) bool { return !b.Start.After(now) && b.End.After(now) }, nil
	case models.StatePast:
		return func(b *models.Booking) bool { return b.End.Before(now) }, nil
	case models.StateFuture:
		return func(b *models.Booking) bool { return b.Start.After(now) }, nil
	case models.StateWaiting:
		return func(b *models.Booking) bool { return b.Status == models.StatusWaiting }, nil
	case models.StateRejected:
		return func(b *models.Booking) bool { return b.Status == models.StatusRejected }, nil
	default:
		return nil, fmt.Errorf("unsupported booking state %v", state)
	}
}

func (s *MemoryStore) HasCompletedBooking(_ context.Context, bookerID, itemID int64, now time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.bookings {
		if b.BookerID == bookerID && b.ItemID == itemID && b.Status == models.StatusApproved && b.End.Before(now) {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) GetLastBooking(_ context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	return s.pickBooking(itemID, func(b *models.Booking) bool { return b.Start.Before(now) },
		func(a, b *models.Booking) bool {
			if !a.End.Equal(b.End) {
				return a.End.After(b.End)
			}
			return a.ID > b.ID
		}), nil
}

func (s *MemoryStore) GetNextBooking(_ context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	return s.pickBooking(itemID, func(b *models.Booking) bool { return b.Start.After(now) },
		func(a, b *models.Booking) bool {
			if !a.Start.Equal(b.Start) {
				return a.Start.Before(b.Start)
			}
			return a.ID < b.ID
		}), nil
}

// pickBooking returns the best non-rejected booking of the item per the ordering.
func (s *MemoryStore) pickBooking(itemID int64, keep func(*models.Booking) bool, better func(a, b *models.Booking) bool) *models.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var best *models.Booking
	for _, b := range s.bookings {
		b := s.joined(b)
		if b.ItemID != itemID || b.Status == models.StatusRejected || !keep(&b) {
			continue
		}
		if best == nil || better(&b, best) {
			best = &b
		}
	}
	return best
}

func (s *MemoryStore) CreateRequest(_ context.Context, req *models.ItemRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	req.ID = s.next("requests")
	s.requests[req.ID] = *req
	return nil
}

func (s *MemoryStore) GetRequestByID(_ context.Context, id int64) (*models.ItemRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requests[id]
	if !ok {
		return nil, fmt.Errorf("item request %d: %w", id, domain.ErrNotFound)
	}
	return &r, nil
}

func (s *MemoryStore) GetRequestsByRequester(_ context.Context, requesterID int64) ([]*models.ItemRequest, error) {
	out := s.filterRequests(func(r *models.ItemRequest) bool { return r.RequesterID == requesterID })
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Created.Equal(out[j].Created) {
			return out[i].Created.Before(out[j].Created)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) GetRequestsExcept(_ context.Context, userID int64, page models.Page) ([]*models.ItemRequest, error) {
	out := s.filterRequests(func(r *models.ItemRequest) bool { return r.RequesterID != userID })
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Created.Equal(out[j].Created) {
			return out[i].Created.After(out[j].Created)
		}
		return out[i].ID > out[j].ID
	})
	return applyPage(out, page), nil
}

func (s *MemoryStore) filterRequests(keep func(*models.ItemRequest) bool) []*models.ItemRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.ItemRequest{}
	for _, r := range s.requests {
		r := r
		if keep(&r) {
			out = append(out, &r)
		}
	}
	return out
}

func (s *MemoryStore) CreateComment(_ context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	comment.ID = s.next("comments")
	s.comments[comment.ID] = *comment
	return nil
}

func (s *MemoryStore) GetCommentsByItem(_ context.Context, itemID int64) ([]*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Comment{}
	for _, c := range s.comments {
		c := c
		if c.ItemID == itemID {
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Created.Equal(out[j].Created) {
			return out[i].Created.Before(out[j].Created)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func applyPage[T any](all []T, page models.Page) []T {
	if page.Size <= 0 {
		return all
	}
	offset := page.Offset()
	if offset >= len(all) {
		return all[:0]
	}
	end := offset + page.Size
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}
