package database

import (
	"context"
	"testing"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequests(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Now()

	alice := createUser(t, db, "Alice", "alice@example.com")
	bob := createUser(t, db, "Bob", "bob@example.com")

	older := &models.ItemRequest{Description: "need a tent", UserID: alice.ID, Created: now.Add(-time.Hour)}
	newer := &models.ItemRequest{Description: "need a stove", UserID: alice.ID, Created: now}
	bobs := &models.ItemRequest{Description: "need a bike", UserID: bob.ID, Created: now}
	for _, r := range []*models.ItemRequest{older, newer, bobs} {
		require.NoError(t, db.CreateRequest(ctx, r))
	}

	t.Run("Get", func(t *testing.T) {
		got, err := db.GetRequest(ctx, older.ID)
		require.NoError(t, err)
		assert.Equal(t, "need a tent", got.Description)
		assert.Equal(t, older.Created.Unix(), got.Created.Unix())

		_, err = db.GetRequest(ctx, 999)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("ByUserNewestFirst", func(t *testing.T) {
		list, err := db.ListRequestsByUser(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, newer.ID, list[0].ID)
		assert.Equal(t, older.ID, list[1].ID)
	})

	t.Run("ExceptUser", func(t *testing.T) {
		list, err := db.ListRequestsExceptUser(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, bobs.ID, list[0].ID)
	})

	t.Run("LinkedItems", func(t *testing.T) {
		reqID := older.ID
		tent := &models.Item{Name: "Tent", Description: "3 person", Available: true, HostID: bob.ID, RequestID: &reqID}
		require.NoError(t, db.CreateItem(ctx, tent))
		require.NoError(t, db.LinkRequestItem(ctx, &models.RequestItem{RequestID: older.ID, ItemID: tent.ID, Created: now}))

		items, err := db.ListRequestItems(ctx, older.ID)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, tent.ID, items[0].ID)
		require.NotNil(t, items[0].RequestID)
		assert.Equal(t, older.ID, *items[0].RequestID)

		items, err = db.ListRequestItems(ctx, newer.ID)
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}
