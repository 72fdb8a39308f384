package service

import (
	"context"
	"time"

	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type ItemRequestService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewItemRequestService(repo domain.Repository, eventBus domain.EventPublisher, logger *zerolog.Logger) *ItemRequestService {
	return &ItemRequestService{repo: repo, eventBus: eventBus, logger: logger, now: time.Now}
}

func (s *ItemRequestService) Create(ctx context.Context, userID int64, description string) (*models.ItemRequestResponse, error) {
	if err := requireText("description", description); err != nil {
		return nil, err
	}
	if _, err := findUser(ctx, s.repo, userID); err != nil {
		return nil, err
	}

	req := &models.ItemRequest{Description: description, RequesterID: userID, Created: s.now()}
	if err := s.repo.CreateRequest(ctx, req); err != nil {
		return nil, err
	}

	publish(s.logger, s.eventBus, events.EventItemRequestCreated, events.ItemRequestEventPayload{
		RequestID:   req.ID,
		RequesterID: userID,
		Description: description,
	})
	return &models.ItemRequestResponse{ItemRequest: *req, Items: []models.Item{}}, nil
}

// GetAllByUser lists the user's own requests, oldest first.
func (s *ItemRequestService) GetAllByUser(ctx context.Context, userID int64) ([]*models.ItemRequestResponse, error) {
	if _, err := findUser(ctx, s.repo, userID); err != nil {
		return nil, err
	}
	reqs, err := s.repo.GetRequestsByRequester(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, reqs)
}

// GetAll lists requests of other users, newest first.
func (s *ItemRequestService) GetAll(ctx context.Context, from, size int, userID int64) ([]*models.ItemRequestResponse, error) {
	page, err := domain.NewPage(from, size)
	if err != nil {
		return nil, err
	}
	if _, err := findUser(ctx, s.repo, userID); err != nil {
		return nil, err
	}
	reqs, err := s.repo.GetRequestsExcept(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, reqs)
}

func (s *ItemRequestService) GetByID(ctx context.Context, requestID, userID int64) (*models.ItemRequestResponse, error) {
	if _, err := findUser(ctx, s.repo, userID); err != nil {
		return nil, err
	}
	req, err := findRequest(ctx, s.repo, requestID)
	if err != nil {
		return nil, err
	}
	out, err := s.withItems(ctx, []*models.ItemRequest{req})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// withItems attaches fulfilling items with one store query for the whole batch.
func (s *ItemRequestService) withItems(ctx context.Context, reqs []*models.ItemRequest) ([]*models.ItemRequestResponse, error) {
	ids := make([]int64, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.ID)
	}
	items, err := s.repo.GetItemsByRequestIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byRequest := make(map[int64][]models.Item, len(reqs))
	for _, it := range items {
		byRequest[*it.RequestID] = append(byRequest[*it.RequestID], *it)
	}

	out := make([]*models.ItemRequestResponse, 0, len(reqs))
	for _, r := range reqs {
		fulfilled := byRequest[r.ID]
		if fulfilled == nil {
			fulfilled = []models.Item{}
		}
		out = append(out, &models.ItemRequestResponse{ItemRequest: *r, Items: fulfilled})
	}
	return out, nil
}
