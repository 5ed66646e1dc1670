package database

import (
	"context"
	"database/sql"
	"fmt"

	"shareit/internal/domain"
	"shareit/internal/models"
)

const itemColumns = `id, name, description, available, host_id, request_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*models.Item, error) {
	var (
		item      models.Item
		requestID sql.NullInt64
	)
	if err := row.Scan(&item.ID, &item.Name, &item.Description, &item.Available, &item.HostID, &requestID); err != nil {
		return nil, err
	}
	if requestID.Valid {
		id := requestID.Int64
		item.RequestID = &id
	}
	return &item, nil
}

func (db *DB) queryItems(ctx context.Context, query string, args ...any) ([]*models.Item, error) {
	rows, err := db.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (db *DB) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	item, err := scanItem(db.q.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id))
	if err != nil {
		return nil, notFoundOr(err, "failed to get item %d", id)
	}
	return item, nil
}

func (db *DB) ListItemsByHost(ctx context.Context, hostID int64) ([]*models.Item, error) {
	return db.queryItems(ctx, `SELECT `+itemColumns+` FROM items WHERE host_id = ? ORDER BY id`, hostID)
}

// SearchAvailableItems matches text case-insensitively against name or description.
func (db *DB) SearchAvailableItems(ctx context.Context, text string) ([]*models.Item, error) {
	pattern := likePattern(text)
	query := `SELECT ` + itemColumns + ` FROM items
		WHERE available = ?
		AND (LOWER(name) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!')
		ORDER BY id`
	return db.queryItems(ctx, query, true, pattern, pattern)
}

func (db *DB) CreateItem(ctx context.Context, item *models.Item) error {
	result, err := db.q.ExecContext(ctx,
		`INSERT INTO items (name, description, available, host_id, request_id) VALUES (?, ?, ?, ?, ?)`,
		item.Name, item.Description, item.Available, item.HostID, nullableID(item.RequestID))
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	item.ID = id
	return nil
}

func (db *DB) UpdateItem(ctx context.Context, item *models.Item) error {
	result, err := db.q.ExecContext(ctx,
		`UPDATE items SET name = ?, description = ?, available = ? WHERE id = ?`,
		item.Name, item.Description, item.Available, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	return checkAffected(result, "item")
}

// DeleteItem removes the item, its bookings, comments and request links.
func (db *DB) DeleteItem(ctx context.Context, id int64) error {
	return db.WithinTx(ctx, func(tx domain.Repository) error {
		return tx.(*DB).deleteItemCascade(ctx, id)
	})
}

func (db *DB) deleteItemCascade(ctx context.Context, id int64) error {
	stmts := []string{
		`DELETE FROM bookings WHERE item_id = ?`,
		`DELETE FROM comments WHERE item_id = ?`,
		`DELETE FROM request_items WHERE item_id = ?`,
	}
	for _, stmt := range stmts {
		if _, err := db.q.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("failed to delete item dependents: %w", err)
		}
	}

	result, err := db.q.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return checkAffected(result, "item")
}

func (db *DB) itemIDsByHost(ctx context.Context, hostID int64) ([]int64, error) {
	rows, err := db.q.QueryContext(ctx, `SELECT id FROM items WHERE host_id = ?`, hostID)
	if err != nil {
		return nil, fmt.Errorf("failed to list host items: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}
