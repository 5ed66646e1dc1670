package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"shareit/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	t.Run("BlankDescription", func(t *testing.T) {
		_, err := f.requests.Create(ctx, alice.ID, "  ")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		_, err := f.requests.Create(ctx, 404, "anything")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		_, err = f.requests.ListOwn(ctx, 404)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		_, err = f.requests.ListOthers(ctx, 404)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	first, err := f.requests.Create(ctx, alice.ID, "need a ladder")
	require.NoError(t, err)
	assert.Equal(t, f.now, first.Created)

	f.now = f.now.Add(time.Minute)
	second, err := f.requests.Create(ctx, alice.ID, "need a tent")
	require.NoError(t, err)

	t.Run("ListOwnNewestFirst", func(t *testing.T) {
		own, err := f.requests.ListOwn(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, own, 2)
		assert.Equal(t, second.ID, own[0].Request.ID)
		assert.Equal(t, first.ID, own[1].Request.ID)
		assert.Empty(t, own[0].Items)
	})

	t.Run("ListOthers", func(t *testing.T) {
		others, err := f.requests.ListOthers(ctx, bob.ID)
		require.NoError(t, err)
		assert.Len(t, others, 2)

		others, err = f.requests.ListOthers(ctx, alice.ID)
		require.NoError(t, err)
		assert.Empty(t, others)
	})

	t.Run("Get", func(t *testing.T) {
		got, err := f.requests.Get(ctx, bob.ID, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "need a ladder", got.Request.Description)

		_, err = f.requests.Get(ctx, bob.ID, 404)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Contains(t, err.Error(), "item request with id = 404")
	})
}

func TestRequestService_Failures(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	repo := new(MockRepository)
	svc := NewRequestService(repo, &logger)

	repo.On("GetUser", ctx, int64(1)).Return(nil, errors.New("db gone")).Once()

	_, err := svc.ListOwn(ctx, 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
	repo.AssertNotCalled(t, "ListRequestsByUser", ctx, int64(1))
}
