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

type CommentService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewCommentService(repo domain.Repository, eventBus domain.EventPublisher, logger *zerolog.Logger) *CommentService {
	return &CommentService{repo: repo, eventBus: eventBus, logger: logger, now: time.Now}
}

// Add stores a comment from a user who has finished an approved booking of the item.
func (s *CommentService) Add(ctx context.Context, itemID, authorID int64, text string) (*models.Comment, error) {
	if err := requireText("text", text); err != nil {
		return nil, err
	}
	author, err := findUser(ctx, s.repo, authorID)
	if err != nil {
		return nil, err
	}
	if _, err := findItem(ctx, s.repo, itemID); err != nil {
		return nil, err
	}

	now := s.now()
	rented, err := s.repo.HasCompletedBooking(ctx, authorID, itemID, now)
	if err != nil {
		return nil, err
	}
	if !rented {
		s.logger.Warn().Int64("item_id", itemID).Int64("user_id", authorID).Msg("Comment without completed booking")
		return nil, domain.NotAvailable("Item %d was never rented by user %d or the rental is not complete", itemID, authorID)
	}

	comment := &models.Comment{
		Text:       text,
		ItemID:     itemID,
		AuthorID:   authorID,
		AuthorName: author.Name,
		Created:    now,
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	metrics.IncCommentAdded()
	publish(s.logger, s.eventBus, events.EventCommentAdded, events.CommentEventPayload{
		CommentID: comment.ID,
		ItemID:    itemID,
		AuthorID:  authorID,
		Text:      text,
	})
	return comment, nil
}

func (s *CommentService) ListByItem(ctx context.Context, itemID int64) ([]*models.Comment, error) {
	if _, err := findItem(ctx, s.repo, itemID); err != nil {
		return nil, err
	}
	return s.repo.GetCommentsByItem(ctx, itemID)
}
