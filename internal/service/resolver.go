package service

import (
	"context"
	"errors"
	"fmt"

	"shareit/internal/domain"
	"shareit/internal/models"
)

// Resolver loads entities by id and fails with domain.ErrNotFound when they are absent.
// Booking, item and request services all depend on it instead of on each other.
type Resolver struct {
	repo domain.Repository
}

func NewResolver(repo domain.Repository) *Resolver {
	return &Resolver{repo: repo}
}

func (r *Resolver) User(ctx context.Context, id int64) (*models.User, error) {
	u, err := r.repo.GetUser(ctx, id)
	return u, resolveErr(err, "user", id)
}

func (r *Resolver) Item(ctx context.Context, id int64) (*models.Item, error) {
	item, err := r.repo.GetItem(ctx, id)
	return item, resolveErr(err, "item", id)
}

func (r *Resolver) Booking(ctx context.Context, id int64) (*models.Booking, error) {
	b, err := r.repo.GetBooking(ctx, id)
	return b, resolveErr(err, "booking", id)
}

func (r *Resolver) Request(ctx context.Context, id int64) (*models.ItemRequest, error) {
	req, err := r.repo.GetRequest(ctx, id)
	return req, resolveErr(err, "item request", id)
}

func resolveErr(err error, entity string, id int64) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%s with id = %d: %w", entity, id, domain.ErrNotFound)
	}
	return fmt.Errorf("failed to load %s %d: %w", entity, id, err)
}
