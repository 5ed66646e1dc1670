package database

import (
	"context"
	"fmt"
	"time"

	"shareit/internal/models"
)

func (db *DB) GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error) {
	var (
		r       models.ItemRequest
		created int64
	)
	err := db.q.QueryRowContext(ctx, `SELECT id, description, user_id, created_at FROM requests WHERE id = ?`, id).
		Scan(&r.ID, &r.Description, &r.UserID, &created)
	if err != nil {
		return nil, notFoundOr(err, "failed to get request %d", id)
	}
	r.Created = time.Unix(created, 0)
	return &r, nil
}

func (db *DB) CreateRequest(ctx context.Context, req *models.ItemRequest) error {
	result, err := db.q.ExecContext(ctx,
		`INSERT INTO requests (description, user_id, created_at) VALUES (?, ?, ?)`,
		req.Description, req.UserID, req.Created.Unix())
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	req.ID = id
	return nil
}

func (db *DB) ListRequestsByUser(ctx context.Context, userID int64) ([]*models.ItemRequest, error) {
	return db.queryRequests(ctx,
		`SELECT id, description, user_id, created_at FROM requests WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
}

func (db *DB) ListRequestsExceptUser(ctx context.Context, userID int64) ([]*models.ItemRequest, error) {
	return db.queryRequests(ctx,
		`SELECT id, description, user_id, created_at FROM requests WHERE user_id <> ? ORDER BY created_at DESC, id DESC`, userID)
}

func (db *DB) queryRequests(ctx context.Context, query string, args ...any) ([]*models.ItemRequest, error) {
	rows, err := db.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.ItemRequest
	for rows.Next() {
		var (
			r       models.ItemRequest
			created int64
		)
		if err := rows.Scan(&r.ID, &r.Description, &r.UserID, &created); err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		r.Created = time.Unix(created, 0)
		requests = append(requests, &r)
	}
	return requests, rows.Err()
}

func (db *DB) LinkRequestItem(ctx context.Context, link *models.RequestItem) error {
	result, err := db.q.ExecContext(ctx,
		`INSERT INTO request_items (request_id, item_id, created_at) VALUES (?, ?, ?)`,
		link.RequestID, link.ItemID, link.Created.Unix())
	if err != nil {
		return fmt.Errorf("failed to link request item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	link.ID = id
	return nil
}

// ListRequestItems returns the items created in response to a request.
func (db *DB) ListRequestItems(ctx context.Context, requestID int64) ([]*models.Item, error) {
	query := `SELECT i.id, i.name, i.description, i.available, i.host_id, i.request_id
		FROM request_items ri
		JOIN items i ON i.id = ri.item_id
		WHERE ri.request_id = ?
		ORDER BY ri.id`
	return db.queryItems(ctx, query, requestID)
}
