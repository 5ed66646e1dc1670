package database

import (
	"context"
	"testing"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemCRUD(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	host := createUser(t, db, "Host", "host@example.com")
	other := createUser(t, db, "Other", "other@example.com")

	drill := createItem(t, db, host.ID, "Drill", true)
	createItem(t, db, host.ID, "Ladder", false)
	createItem(t, db, other.ID, "Kayak", true)

	t.Run("Get", func(t *testing.T) {
		got, err := db.GetItem(ctx, drill.ID)
		require.NoError(t, err)
		assert.Equal(t, drill, got)
		assert.Nil(t, got.RequestID)
	})

	t.Run("ListByHost", func(t *testing.T) {
		items, err := db.ListItemsByHost(ctx, host.ID)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "Drill", items[0].Name)
		assert.Equal(t, "Ladder", items[1].Name)
	})

	t.Run("Update", func(t *testing.T) {
		updated := *drill
		updated.Name = "Cordless drill"
		updated.Available = false
		require.NoError(t, db.UpdateItem(ctx, &updated))

		got, err := db.GetItem(ctx, drill.ID)
		require.NoError(t, err)
		assert.Equal(t, "Cordless drill", got.Name)
		assert.False(t, got.Available)
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		assert.ErrorIs(t, db.DeleteItem(ctx, 12345), domain.ErrNotFound)
	})
}

func TestSearchAvailableItems(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	host := createUser(t, db, "Host", "host@example.com")

	require.NoError(t, db.CreateItem(ctx, &models.Item{Name: "Power Drill", Description: "18V", Available: true, HostID: host.ID}))
	require.NoError(t, db.CreateItem(ctx, &models.Item{Name: "Hammer", Description: "heavy, good with a DRILL bit", Available: true, HostID: host.ID}))
	require.NoError(t, db.CreateItem(ctx, &models.Item{Name: "Drill press", Description: "bench", Available: false, HostID: host.ID}))
	require.NoError(t, db.CreateItem(ctx, &models.Item{Name: "100% cotton tent", Description: "2 person", Available: true, HostID: host.ID}))

	t.Run("CaseInsensitiveNameOrDescription", func(t *testing.T) {
		items, err := db.SearchAvailableItems(ctx, "dRiLl")
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "Power Drill", items[0].Name)
		assert.Equal(t, "Hammer", items[1].Name)
	})

	t.Run("WildcardsAreLiteral", func(t *testing.T) {
		items, err := db.SearchAvailableItems(ctx, "0% c")
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "100% cotton tent", items[0].Name)

		items, err = db.SearchAvailableItems(ctx, "_")
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}
