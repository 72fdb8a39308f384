package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type ItemService struct {
	repo   domain.Repository
	logger *zerolog.Logger
	now    func() time.Time
}

func NewItemService(repo domain.Repository, logger *zerolog.Logger) *ItemService {
	return &ItemService{repo: repo, logger: logger, now: time.Now}
}

func (s *ItemService) Create(ctx context.Context, ownerID int64, in models.ItemCreate) (*models.Item, error) {
	if err := requireText("name", in.Name); err != nil {
		return nil, err
	}
	if err := requireText("description", in.Description); err != nil {
		return nil, err
	}

	if _, err := findUser(ctx, s.repo, ownerID); err != nil {
		return nil, err
	}
	if in.RequestID != nil {
		if _, err := findRequest(ctx, s.repo, *in.RequestID); err != nil {
			return nil, err
		}
	}

	item := &models.Item{
		Name:        in.Name,
		Description: in.Description,
		Available:   in.Available,
		OwnerID:     ownerID,
		RequestID:   in.RequestID,
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("item_id", item.ID).Int64("owner_id", ownerID).Msg("Item created")
	return item, nil
}

// Update merges the non-nil fields of patch. Items of other owners are reported as absent.
func (s *ItemService) Update(ctx context.Context, itemID, callerID int64, patch models.ItemPatch) (*models.Item, error) {
	if patch.Name != nil {
		if err := requireText("name", *patch.Name); err != nil {
			return nil, err
		}
	}
	if patch.Description != nil {
		if err := requireText("description", *patch.Description); err != nil {
			return nil, err
		}
	}

	if _, err := findUser(ctx, s.repo, callerID); err != nil {
		return nil, err
	}
	item, err := findItem(ctx, s.repo, itemID)
	if err != nil {
		return nil, err
	}
	if !isItemOwner(item, callerID) {
		s.logger.Warn().Int64("item_id", itemID).Int64("user_id", callerID).Msg("Item update by non-owner")
		return nil, domain.NotFound("Item with id %d not found for user %d", itemID, callerID)
	}

	patch.Apply(item)
	if err := s.repo.UpdateItem(ctx, item); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound("Item with id %d not found", itemID)
		}
		return nil, err
	}
	return item, nil
}

// GetByID returns the item with comments; booking references are shown to the owner only.
func (s *ItemService) GetByID(ctx context.Context, itemID, callerID int64) (*models.ItemDetails, error) {
	item, err := findItem(ctx, s.repo, itemID)
	if err != nil {
		return nil, err
	}
	return s.details(ctx, item, isItemOwner(item, callerID), s.now())
}

func (s *ItemService) GetAllByOwner(ctx context.Context, ownerID int64, from, size int) ([]*models.ItemDetails, error) {
	page, err := domain.NewPage(from, size)
	if err != nil {
		return nil, err
	}
	if _, err := findUser(ctx, s.repo, ownerID); err != nil {
		return nil, err
	}

	items, err := s.repo.GetItemsByOwner(ctx, ownerID, page)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]*models.ItemDetails, 0, len(items))
	for _, item := range items {
		d, err := s.details(ctx, item, true, now)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// Search matches available items by name or description. Blank text finds nothing.
func (s *ItemService) Search(ctx context.Context, text string, from, size int) ([]*models.Item, error) {
	page, err := domain.NewPage(from, size)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return []*models.Item{}, nil
	}
	return s.repo.SearchItems(ctx, text, page)
}

func (s *ItemService) details(ctx context.Context, item *models.Item, owner bool, now time.Time) (*models.ItemDetails, error) {
	comments, err := s.repo.GetCommentsByItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}

	d := &models.ItemDetails{Item: *item, Comments: make([]models.Comment, 0, len(comments))}
	for _, c := range comments {
		d.Comments = append(d.Comments, *c)
	}
	if !owner {
		return d, nil
	}

	last, err := s.repo.GetLastBooking(ctx, item.ID, now)
	if err != nil {
		return nil, err
	}
	next, err := s.repo.GetNextBooking(ctx, item.ID, now)
	if err != nil {
		return nil, err
	}
	d.LastBooking = models.ShortBooking(last)
	d.NextBooking = models.ShortBooking(next)
	return d, nil
}
