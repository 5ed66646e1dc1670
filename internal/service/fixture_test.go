package service

import (
	"context"
	"testing"
	"time"

	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"
	"shareit/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	repo     *repository.MemoryRepository
	users    *UserService
	bookings *BookingService
	items    *ItemService
	requests *RequestService
	now      time.Time
	events   []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zerolog.Nop()
	repo := repository.NewMemoryRepository()
	bus := events.NewEventBus()

	f := &fixture{
		repo: repo,
		now:  time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local),
	}
	for _, eventType := range events.BookingEvents {
		bus.Subscribe(eventType, func(e *events.Event) error {
			f.events = append(f.events, e.Type)
			return nil
		})
	}

	clock := func() time.Time { return f.now }
	f.users = NewUserService(repo, &logger)
	f.bookings = NewBookingService(repo, bus, &logger)
	f.bookings.now = clock
	f.items = NewItemService(repo, f.bookings, &logger)
	f.items.now = clock
	f.requests = NewRequestService(repo, &logger)
	f.requests.now = clock
	return f
}

func (f *fixture) user(t *testing.T, name string) *models.User {
	t.Helper()
	u, err := f.users.Create(context.Background(), &models.User{Name: name, Email: name + "@example.com"})
	require.NoError(t, err)
	return u
}

func (f *fixture) item(t *testing.T, hostID int64, name string, available bool) *models.Item {
	t.Helper()
	item, err := f.items.Create(context.Background(), hostID, &models.Item{Name: name, Description: name, Available: available})
	require.NoError(t, err)
	return item
}

// booking creates a booking relative to f.now and optionally decides it.
func (f *fixture) booking(t *testing.T, bookerID, itemID int64, from, to time.Duration, status models.BookingStatus) *models.Booking {
	t.Helper()
	ctx := context.Background()
	b, err := f.bookings.Create(ctx, bookerID, itemID, f.now.Add(from), f.now.Add(to))
	require.NoError(t, err)
	if status == models.StatusWaiting {
		return b
	}
	b, err = f.bookings.Approve(ctx, b.Item.HostID, b.ID, status == models.StatusApproved)
	require.NoError(t, err)
	return b
}

// MockRepository overrides single methods of domain.Repository for failure paths.
// Calling a method that is not overridden panics on the nil embedded interface.
type MockRepository struct {
	domain.Repository
	mock.Mock
}

func (m *MockRepository) WithinTx(ctx context.Context, fn func(tx domain.Repository) error) error {
	return fn(m)
}

func (m *MockRepository) GetUser(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockRepository) CreateUser(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockRepository) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockRepository) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockRepository) CreateBooking(ctx context.Context, booking *models.Booking) error {
	return m.Called(ctx, booking).Error(0)
}

func (m *MockRepository) ListCommentsByItem(ctx context.Context, itemID int64) ([]*models.Comment, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Comment), args.Error(1)
}

func (m *MockRepository) ListRequestsByUser(ctx context.Context, userID int64) ([]*models.ItemRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ItemRequest), args.Error(1)
}

type mockEventBus struct {
	mock.Mock
}

func (m *mockEventBus) PublishJSON(et string, p interface{}) error { return m.Called(et, p).Error(0) }
