package repository

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.Bool(1), args.Error(2)
}

func (m *mockCache) Set(ctx context.Context, key string, body []byte) error {
	return m.Called(ctx, key, body).Error(0)
}

func (m *mockCache) Flush(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestFailoverResponseCache(t *testing.T) {
	primary := new(mockCache)
	fallback := new(mockCache)
	logger := zerolog.New(io.Discard)
	cache := NewFailoverResponseCache(primary, fallback, &logger)
	ctx := context.Background()

	t.Run("PrimarySuccess", func(t *testing.T) {
		primary.On("Get", ctx, "/users").Return([]byte(`[]`), true, nil).Once()

		body, ok, err := cache.Get(ctx, "/users")
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte(`[]`), body)
		primary.AssertExpectations(t)
	})

	t.Run("PrimaryFailFallbackSuccess", func(t *testing.T) {
		primary.On("Get", ctx, "/users/1").Return(nil, false, errors.New("fail")).Once()
		fallback.On("Get", ctx, "/users/1").Return([]byte(`{}`), true, nil).Once()

		body, ok, err := cache.Get(ctx, "/users/1")
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte(`{}`), body)
		assert.True(t, cache.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("AlreadyDownSkipsPrimary", func(t *testing.T) {
		fallback.On("Set", ctx, "/users/2", []byte(`{}`)).Return(nil).Once()

		assert.NoError(t, cache.Set(ctx, "/users/2", []byte(`{}`)))
		fallback.AssertExpectations(t)
		primary.AssertNotCalled(t, "Set", ctx, "/users/2", []byte(`{}`))
	})

	t.Run("RecoveryAttempt", func(t *testing.T) {
		cache.lastCheck = time.Now().Add(-2 * time.Minute)
		primary.On("Get", ctx, "/users/3").Return(nil, false, nil).Once()

		_, ok, err := cache.Get(ctx, "/users/3")
		assert.NoError(t, err)
		assert.False(t, ok)
		assert.False(t, cache.isDown.Load())
		primary.AssertExpectations(t)
	})

	t.Run("SetFailover", func(t *testing.T) {
		primary.On("Set", ctx, "/users/4", []byte(`{}`)).Return(errors.New("fail")).Once()
		fallback.On("Set", ctx, "/users/4", []byte(`{}`)).Return(nil).Once()

		assert.NoError(t, cache.Set(ctx, "/users/4", []byte(`{}`)))
		assert.True(t, cache.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("FlushClearsBoth", func(t *testing.T) {
		primary.On("Flush", ctx).Return(errors.New("still down")).Once()
		fallback.On("Flush", ctx).Return(nil).Once()

		assert.NoError(t, cache.Flush(ctx))
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})
}
