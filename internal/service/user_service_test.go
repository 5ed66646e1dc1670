package service

import (
	"context"
	"errors"
	"testing"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestUserService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	t.Run("Get", func(t *testing.T) {
		got, err := f.users.Get(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", got.Email)

		_, err = f.users.Get(ctx, 100)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("CreateDuplicateEmail", func(t *testing.T) {
		_, err := f.users.Create(ctx, &models.User{Name: "clone", Email: "alice@example.com"})
		assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
		assert.Contains(t, err.Error(), "alice@example.com")
	})

	t.Run("PartialUpdate", func(t *testing.T) {
		got, err := f.users.Update(ctx, alice.ID, models.UserPatch{Name: strPtr("Alice")})
		require.NoError(t, err)
		assert.Equal(t, "Alice", got.Name)
		assert.Equal(t, "alice@example.com", got.Email)

		got, err = f.users.Update(ctx, alice.ID, models.UserPatch{Email: strPtr("a@example.com")})
		require.NoError(t, err)
		assert.Equal(t, "Alice", got.Name)
		assert.Equal(t, "a@example.com", got.Email)
	})

	t.Run("UpdateToOwnEmail", func(t *testing.T) {
		_, err := f.users.Update(ctx, bob.ID, models.UserPatch{Email: strPtr("bob@example.com")})
		assert.NoError(t, err)
	})

	t.Run("UpdateToForeignEmail", func(t *testing.T) {
		_, err := f.users.Update(ctx, bob.ID, models.UserPatch{Email: strPtr("a@example.com")})
		assert.ErrorIs(t, err, domain.ErrDuplicateEmail)

		got, err := f.users.Get(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, "bob@example.com", got.Email)
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		_, err := f.users.Update(ctx, 100, models.UserPatch{Name: strPtr("x")})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("DeleteReturnsUser", func(t *testing.T) {
		got, err := f.users.Delete(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, "bob", got.Name)

		users, err := f.users.List(ctx)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, alice.ID, users[0].ID)

		_, err = f.users.Delete(ctx, bob.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestUserService_Failures(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	t.Run("EmailLookupFails", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewUserService(repo, &logger)
		repo.On("GetUserByEmail", ctx, "x@example.com").Return(nil, errors.New("timeout")).Once()

		_, err := svc.Create(ctx, &models.User{Name: "x", Email: "x@example.com"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to check email")
		repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("UniqueIndexRace", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewUserService(repo, &logger)
		repo.On("GetUserByEmail", ctx, "x@example.com").Return(nil, domain.ErrNotFound).Once()
		repo.On("CreateUser", ctx, mock.AnythingOfType("*models.User")).Return(domain.ErrDuplicateEmail).Once()

		_, err := svc.Create(ctx, &models.User{Name: "x", Email: "x@example.com"})
		assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
		assert.Contains(t, err.Error(), "x@example.com")
		repo.AssertExpectations(t)
	})
}
