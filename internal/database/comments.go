package database

import (
	"context"
	"fmt"
	"time"

	"shareit/internal/models"
)

func (db *DB) CreateComment(ctx context.Context, comment *models.Comment) error {
	result, err := db.q.ExecContext(ctx,
		`INSERT INTO comments (text, item_id, author_id, created_at) VALUES (?, ?, ?, ?)`,
		comment.Text, comment.ItemID, comment.AuthorID, comment.Created.Unix())
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	comment.ID = id
	return nil
}

func (db *DB) ListCommentsByItem(ctx context.Context, itemID int64) ([]*models.Comment, error) {
	rows, err := db.q.QueryContext(ctx, `SELECT c.id, c.text, c.item_id, c.author_id, u.name, c.created_at
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.item_id = ?
		ORDER BY c.id`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		var (
			c       models.Comment
			created int64
		)
		if err := rows.Scan(&c.ID, &c.Text, &c.ItemID, &c.AuthorID, &c.AuthorName, &created); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		c.Created = time.Unix(created, 0)
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}
