package service

import (
	"context"
	"fmt"
	"time"

	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// BookingService owns the booking state machine and the booking queries.
type BookingService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, logger *zerolog.Logger) *BookingService {
	l := logger.With().Str("component", "booking_service").Logger()
	return &BookingService{
		repo:     repo,
		eventBus: eventBus,
		logger:   &l,
		now:      time.Now,
	}
}

// withRepo returns a copy bound to a transaction.
func (s *BookingService) withRepo(repo domain.Repository) *BookingService {
	c := *s
	c.repo = repo
	return &c
}

// Create always stores the booking as WAITING. Ordering of start and end is checked by the gateway.
func (s *BookingService) Create(ctx context.Context, bookerID, itemID int64, start, end time.Time) (*models.Booking, error) {
	var booking *models.Booking
	err := s.repo.WithinTx(ctx, func(tx domain.Repository) error {
		resolve := NewResolver(tx)
		if _, err := resolve.User(ctx, bookerID); err != nil {
			return err
		}
		item, err := resolve.Item(ctx, itemID)
		if err != nil {
			return err
		}
		if !item.Available {
			return fmt.Errorf("%w: item with id = %d is not available for booking", domain.ErrNotAvailable, itemID)
		}

		b := &models.Booking{
			Start:    start,
			End:      end,
			Status:   models.StatusWaiting,
			BookerID: bookerID,
			ItemID:   itemID,
		}
		if err := tx.CreateBooking(ctx, b); err != nil {
			return err
		}
		booking, err = tx.GetBooking(ctx, b.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(events.EventBookingCreated, booking, bookerID)
	return booking, nil
}

// Approve lets the item host move a booking to APPROVED or REJECTED.
// A booking that is already APPROVED or REJECTED can be decided again.
func (s *BookingService) Approve(ctx context.Context, hostID, bookingID int64, approved bool) (*models.Booking, error) {
	status := models.StatusRejected
	if approved {
		status = models.StatusApproved
	}

	var booking *models.Booking
	err := s.repo.WithinTx(ctx, func(tx domain.Repository) error {
		b, err := NewResolver(tx).Booking(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.Item.HostID != hostID {
			return fmt.Errorf("%w: user %d is not the host of item %d", domain.ErrUnauthorized, hostID, b.ItemID)
		}
		if err := tx.UpdateBookingStatus(ctx, bookingID, status); err != nil {
			return err
		}
		booking, err = tx.GetBooking(ctx, bookingID)
		return err
	})
	if err != nil {
		return nil, err
	}

	eventType := events.EventBookingRejected
	if approved {
		eventType = events.EventBookingApproved
	}
	s.publishEvent(eventType, booking, hostID)
	return booking, nil
}

// FindByID is visible to the booker and the item host only.
func (s *BookingService) FindByID(ctx context.Context, callerID, bookingID int64) (*models.Booking, error) {
	b, err := NewResolver(s.repo).Booking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.BookerID != callerID && b.Item.HostID != callerID {
		return nil, fmt.Errorf("%w: user %d can not view booking %d", domain.ErrUnauthorized, callerID, bookingID)
	}
	return b, nil
}

func (s *BookingService) FindByUser(ctx context.Context, userID int64, state models.BookingState) ([]*models.Booking, error) {
	if _, err := NewResolver(s.repo).User(ctx, userID); err != nil {
		return nil, err
	}
	return s.repo.ListBookingsByBooker(ctx, userID, state, s.now())
}

// FindByOwner lists bookings of every item hosted by hostID.
func (s *BookingService) FindByOwner(ctx context.Context, hostID int64, state models.BookingState) ([]*models.Booking, error) {
	if _, err := NewResolver(s.repo).User(ctx, hostID); err != nil {
		return nil, err
	}
	return s.repo.ListBookingsByOwner(ctx, hostID, state, s.now())
}

// FindByItemAndUser returns finished approved bookings; a comment needs at least one.
func (s *BookingService) FindByItemAndUser(ctx context.Context, itemID, userID int64) ([]*models.Booking, error) {
	return s.repo.ListPastApprovedBookings(ctx, itemID, userID, s.now())
}

// FindLastBooking ignores bookings that ended less than LastBookingOffset ago. Nil means none.
func (s *BookingService) FindLastBooking(ctx context.Context, itemID int64) (*models.Booking, error) {
	return s.repo.FindLastBooking(ctx, itemID, s.now().Add(-models.LastBookingOffset))
}

// FindNextBooking returns nil when nothing is scheduled.
func (s *BookingService) FindNextBooking(ctx context.Context, itemID int64) (*models.Booking, error) {
	return s.repo.FindNextBooking(ctx, itemID, s.now())
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, changedBy int64) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID: booking.ID,
		BookerID:  booking.BookerID,
		ItemID:    booking.ItemID,
		Status:    string(booking.Status),
		Start:     booking.Start,
		End:       booking.End,
		ChangedBy: changedBy,
	}
	if booking.Item != nil {
		payload.ItemName = booking.Item.Name
		payload.HostID = booking.Item.HostID
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}
