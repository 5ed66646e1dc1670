package service

import (
	"context"
	"errors"
	"fmt"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type UserService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewUserService(repo domain.Repository, logger *zerolog.Logger) *UserService {
	l := logger.With().Str("component", "user_service").Logger()
	return &UserService{repo: repo, logger: &l}
}

func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	return s.repo.ListUsers(ctx)
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	return NewResolver(s.repo).User(ctx, id)
}

func (s *UserService) Create(ctx context.Context, user *models.User) (*models.User, error) {
	err := s.repo.WithinTx(ctx, func(tx domain.Repository) error {
		if err := ensureEmailFree(ctx, tx, user.Email, 0); err != nil {
			return err
		}
		return duplicateOr(tx.CreateUser(ctx, user), user.Email)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("user created")
	return user, nil
}

// Update applies only the fields present in the patch.
func (s *UserService) Update(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	var user *models.User
	err := s.repo.WithinTx(ctx, func(tx domain.Repository) error {
		var err error
		user, err = NewResolver(tx).User(ctx, id)
		if err != nil {
			return err
		}

		if patch.Name != nil {
			user.Name = *patch.Name
		}
		if patch.Email != nil && *patch.Email != user.Email {
			if err := ensureEmailFree(ctx, tx, *patch.Email, id); err != nil {
				return err
			}
			user.Email = *patch.Email
		}
		return duplicateOr(tx.UpdateUser(ctx, user), user.Email)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Delete returns the removed user.
func (s *UserService) Delete(ctx context.Context, id int64) (*models.User, error) {
	var user *models.User
	err := s.repo.WithinTx(ctx, func(tx domain.Repository) error {
		var err error
		user, err = NewResolver(tx).User(ctx, id)
		if err != nil {
			return err
		}
		return tx.DeleteUser(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", id).Msg("user deleted")
	return user, nil
}

func ensureEmailFree(ctx context.Context, repo domain.UserRepository, email string, ownerID int64) error {
	existing, err := repo.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("failed to check email: %w", err)
	case existing.ID != ownerID:
		return fmt.Errorf("%w: %s", domain.ErrDuplicateEmail, email)
	}
	return nil
}

// duplicateOr adds the email to a unique-index violation reported by the store.
func duplicateOr(err error, email string) error {
	if errors.Is(err, domain.ErrDuplicateEmail) {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateEmail, email)
	}
	return err
}
