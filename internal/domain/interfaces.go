package domain

import (
	"context"
	"time"

	"shareit/internal/models"
)

type UserRepository interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error
}

type ItemRepository interface {
	GetItem(ctx context.Context, id int64) (*models.Item, error)
	ListItemsByHost(ctx context.Context, hostID int64) ([]*models.Item, error)
	SearchAvailableItems(ctx context.Context, text string) ([]*models.Item, error)
	CreateItem(ctx context.Context, item *models.Item) error
	UpdateItem(ctx context.Context, item *models.Item) error
	DeleteItem(ctx context.Context, id int64) error
}

type BookingRepository interface {
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	CreateBooking(ctx context.Context, booking *models.Booking) error
	UpdateBookingStatus(ctx context.Context, id int64, status models.BookingStatus) error
	ListBookingsByBooker(ctx context.Context, bookerID int64, state models.BookingState, now time.Time) ([]*models.Booking, error)
	ListBookingsByOwner(ctx context.Context, hostID int64, state models.BookingState, now time.Time) ([]*models.Booking, error)
	ListPastApprovedBookings(ctx context.Context, itemID, bookerID int64, now time.Time) ([]*models.Booking, error)
	// FindLastBooking returns the approved booking with the latest end before the given moment, or nil.
	FindLastBooking(ctx context.Context, itemID int64, before time.Time) (*models.Booking, error)
	// FindNextBooking returns the approved booking with the earliest start after the given moment, or nil.
	FindNextBooking(ctx context.Context, itemID int64, after time.Time) (*models.Booking, error)
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	ListCommentsByItem(ctx context.Context, itemID int64) ([]*models.Comment, error)
}

type RequestRepository interface {
	GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error)
	CreateRequest(ctx context.Context, req *models.ItemRequest) error
	ListRequestsByUser(ctx context.Context, userID int64) ([]*models.ItemRequest, error)
	ListRequestsExceptUser(ctx context.Context, userID int64) ([]*models.ItemRequest, error)
	LinkRequestItem(ctx context.Context, link *models.RequestItem) error
	ListRequestItems(ctx context.Context, requestID int64) ([]*models.Item, error)
}

// Repository is the whole storage contract. Implementations: SQL (database) and in-memory (repository).
type Repository interface {
	UserRepository
	ItemRepository
	BookingRepository
	CommentRepository
	RequestRepository

	// WithinTx runs fn atomically; fn must use the repository it receives.
	WithinTx(ctx context.Context, fn func(tx Repository) error) error
	Ping(ctx context.Context) error
	Close() error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}
