package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type ItemService struct {
	repo     domain.Repository
	bookings *BookingService
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewItemService(repo domain.Repository, bookings *BookingService, logger *zerolog.Logger) *ItemService {
	l := logger.With().Str("component", "item_service").Logger()
	return &ItemService{
		repo:     repo,
		bookings: bookings,
		logger:   &l,
		now:      time.Now,
	}
}

// ListByHost returns the host's items with comments and adjacent bookings.
func (s *ItemService) ListByHost(ctx context.Context, hostID int64) ([]*models.ItemDetails, error) {
	if _, err := NewResolver(s.repo).User(ctx, hostID); err != nil {
		return nil, err
	}

	items, err := s.repo.ListItemsByHost(ctx, hostID)
	if err != nil {
		return nil, err
	}

	details := make([]*models.ItemDetails, 0, len(items))
	for _, item := range items {
		d, err := s.details(ctx, item)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, nil
}

// Get does not require the caller to exist.
func (s *ItemService) Get(ctx context.Context, itemID int64) (*models.ItemDetails, error) {
	item, err := NewResolver(s.repo).Item(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return s.details(ctx, item)
}

func (s *ItemService) details(ctx context.Context, item *models.Item) (*models.ItemDetails, error) {
	comments, err := s.repo.ListCommentsByItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}

	d := &models.ItemDetails{Item: *item, Comments: make([]models.Comment, 0, len(comments))}
	for _, c := range comments {
		d.Comments = append(d.Comments, *c)
	}

	if d.LastBooking, err = s.bookings.FindLastBooking(ctx, item.ID); err != nil {
		return nil, err
	}
	if d.NextBooking, err = s.bookings.FindNextBooking(ctx, item.ID); err != nil {
		return nil, err
	}
	return d, nil
}

// Search matches available items by name or description; blank text finds nothing.
func (s *ItemService) Search(ctx context.Context, text string) ([]*models.Item, error) {
	if strings.TrimSpace(text) == "" {
		return []*models.Item{}, nil
	}
	return s.repo.SearchAvailableItems(ctx, text)
}

// Create stores the item for hostID and links it to item.RequestID when one is given.
func (s *ItemService) Create(ctx context.Context, hostID int64, item *models.Item) (*models.Item, error) {
	err := s.repo.WithinTx(ctx, func(tx domain.Repository) error {
		resolve := NewResolver(tx)
		if _, err := resolve.User(ctx, hostID); err != nil {
			return err
		}
		if item.RequestID != nil {
			if _, err := resolve.Request(ctx, *item.RequestID); err != nil {
				return err
			}
		}

		item.HostID = hostID
		if err := tx.CreateItem(ctx, item); err != nil {
			return err
		}
		if item.RequestID == nil {
			return nil
		}
		return tx.LinkRequestItem(ctx, &models.RequestItem{
			RequestID: *item.RequestID,
			ItemID:    item.ID,
			Created:   s.now(),
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("item_id", item.ID).Int64("host_id", hostID).Msg("item created")
	return item, nil
}

// hostedItem treats an item of another host as missing.
func hostedItem(ctx context.Context, tx domain.Repository, hostID, itemID int64) (*models.Item, error) {
	resolve := NewResolver(tx)
	if _, err := resolve.User(ctx, hostID); err != nil {
		return nil, err
	}
	item, err := resolve.Item(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.HostID != hostID {
		return nil, fmt.Errorf("item with id = %d related to user with id = %d: %w", itemID, hostID, domain.ErrNotFound)
	}
	return item, nil
}

func (s *ItemService) Update(ctx context.Context, hostID, itemID int64, patch models.ItemPatch) (*models.Item, error) {
	var item *models.Item
	err := s.repo.WithinTx(ctx, func(tx domain.Repository) error {
		var err error
		item, err = hostedItem(ctx, tx, hostID, itemID)
		if err != nil {
			return err
		}

		if patch.Name != nil {
			item.Name = *patch.Name
		}
		if patch.Description != nil {
			item.Description = *patch.Description
		}
		if patch.Available != nil {
			item.Available = *patch.Available
		}
		return tx.UpdateItem(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Delete returns the removed item.
func (s *ItemService) Delete(ctx context.Context, hostID, itemID int64) (*models.Item, error) {
	var item *models.Item
	err := s.repo.WithinTx(ctx, func(tx domain.Repository) error {
		var err error
		item, err = hostedItem(ctx, tx, hostID, itemID)
		if err != nil {
			return err
		}
		return tx.DeleteItem(ctx, itemID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("item_id", itemID).Int64("host_id", hostID).Msg("item deleted")
	return item, nil
}

// AddComment is allowed only after the author finished an approved booking of the item.
func (s *ItemService) AddComment(ctx context.Context, authorID, itemID int64, text string) (*models.Comment, error) {
	var comment *models.Comment
	err := s.repo.WithinTx(ctx, func(tx domain.Repository) error {
		resolve := NewResolver(tx)
		author, err := resolve.User(ctx, authorID)
		if err != nil {
			return err
		}
		if _, err := resolve.Item(ctx, itemID); err != nil {
			return err
		}

		past, err := s.bookings.withRepo(tx).FindByItemAndUser(ctx, itemID, authorID)
		if err != nil {
			return err
		}
		if len(past) == 0 {
			return fmt.Errorf("%w: user %d does not have past bookings of item %d", domain.ErrNotAvailable, authorID, itemID)
		}

		comment = &models.Comment{
			Text:       text,
			ItemID:     itemID,
			AuthorID:   authorID,
			AuthorName: author.Name,
			Created:    s.now(),
		}
		return tx.CreateComment(ctx, comment)
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}
