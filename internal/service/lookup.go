package service

import (
	"context"
	"errors"
	"strings"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func findUser(ctx context.Context, repo domain.UserRepository, id int64) (*models.User, error) {
	user, err := repo.GetUserByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound("User with id %d not found", id)
	}
	return user, err
}

func findItem(ctx context.Context, repo domain.ItemRepository, id int64) (*models.Item, error) {
	item, err := repo.GetItemByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound("Item with id %d not found", id)
	}
	return item, err
}

func findBooking(ctx context.Context, repo domain.BookingRepository, id int64) (*models.Booking, error) {
	booking, err := repo.GetBooking(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound("Booking with id %d not found", id)
	}
	return booking, err
}

func findRequest(ctx context.Context, repo domain.ItemRequestRepository, id int64) (*models.ItemRequest, error) {
	req, err := repo.GetRequestByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound("Item request with id %d not found", id)
	}
	return req, err
}

func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return domain.BadField(field, "%s must not be blank", field)
	}
	return nil
}

func requireEmail(email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return domain.BadField("email", "email %q is not valid", email)
	}
	return nil
}

// publish is best effort: a failed event never fails the operation.
func publish(logger *zerolog.Logger, pub domain.EventPublisher, eventType string, payload interface{}) {
	if pub == nil {
		return
	}
	if err := pub.PublishJSON(eventType, payload); err != nil {
		logger.Warn().Err(err).Str("event", eventType).Msg("Failed to publish event")
	}
}
