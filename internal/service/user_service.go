package service

import (
	"context"
	"errors"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type UserService struct {
	repo   domain.UserRepository
	logger *zerolog.Logger
}

func NewUserService(repo domain.UserRepository, logger *zerolog.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

func (s *UserService) Create(ctx context.Context, name, email string) (*models.User, error) {
	if err := requireText("name", name); err != nil {
		return nil, err
	}
	if err := requireEmail(email); err != nil {
		return nil, err
	}

	user := &models.User{Name: name, Email: email}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			s.logger.Warn().Str("email", email).Msg("Duplicate user email")
		}
		return nil, err
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("User created")
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return findUser(ctx, s.repo, id)
}

func (s *UserService) GetAll(ctx context.Context) ([]*models.User, error) {
	return s.repo.GetAllUsers(ctx)
}

// Update merges the non-nil fields of patch into the stored user.
func (s *UserService) Update(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	if patch.Name != nil {
		if err := requireText("name", *patch.Name); err != nil {
			return nil, err
		}
	}
	if patch.Email != nil {
		if err := requireEmail(*patch.Email); err != nil {
			return nil, err
		}
	}

	user, err := findUser(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(user)

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound("User with id %d not found", id)
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	err := s.repo.DeleteUser(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NotFound("User with id %d not found", id)
	}
	if err == nil {
		s.logger.Info().Int64("user_id", id).Msg("User deleted")
	}
	return err
}
