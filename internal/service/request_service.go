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

type RequestService struct {
	repo   domain.Repository
	logger *zerolog.Logger
	now    func() time.Time
}

func NewRequestService(repo domain.Repository, logger *zerolog.Logger) *RequestService {
	l := logger.With().Str("component", "request_service").Logger()
	return &RequestService{repo: repo, logger: &l, now: time.Now}
}

func (s *RequestService) Create(ctx context.Context, userID int64, description string) (*models.ItemRequest, error) {
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("%w: description must not be blank", domain.ErrValidation)
	}

	req := &models.ItemRequest{Description: description, UserID: userID, Created: s.now()}
	err := s.repo.WithinTx(ctx, func(tx domain.Repository) error {
		if _, err := NewResolver(tx).User(ctx, userID); err != nil {
			return err
		}
		return tx.CreateRequest(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// ListOwn returns the caller's requests, newest first.
func (s *RequestService) ListOwn(ctx context.Context, userID int64) ([]*models.RequestDetails, error) {
	if _, err := NewResolver(s.repo).User(ctx, userID); err != nil {
		return nil, err
	}
	requests, err := s.repo.ListRequestsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, requests)
}

// ListOthers returns requests posted by everyone except the caller, newest first.
func (s *RequestService) ListOthers(ctx context.Context, userID int64) ([]*models.RequestDetails, error) {
	if _, err := NewResolver(s.repo).User(ctx, userID); err != nil {
		return nil, err
	}
	requests, err := s.repo.ListRequestsExceptUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, requests)
}

func (s *RequestService) Get(ctx context.Context, userID, requestID int64) (*models.RequestDetails, error) {
	resolve := NewResolver(s.repo)
	if _, err := resolve.User(ctx, userID); err != nil {
		return nil, err
	}
	req, err := resolve.Request(ctx, requestID)
	if err != nil {
		return nil, err
	}
	return s.details(ctx, req)
}

func (s *RequestService) withItems(ctx context.Context, requests []*models.ItemRequest) ([]*models.RequestDetails, error) {
	out := make([]*models.RequestDetails, 0, len(requests))
	for _, req := range requests {
		d, err := s.details(ctx, req)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *RequestService) details(ctx context.Context, req *models.ItemRequest) (*models.RequestDetails, error) {
	items, err := s.repo.ListRequestItems(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	d := &models.RequestDetails{Request: *req, Items: make([]models.Item, 0, len(items))}
	for _, item := range items {
		d.Items = append(d.Items, *item)
	}
	return d, nil
}
