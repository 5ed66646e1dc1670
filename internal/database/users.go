package database

import (
	"context"
	"fmt"

	"shareit/internal/domain"
	"shareit/internal/models"
)

func (db *DB) ListUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := db.q.QueryContext(ctx, `SELECT id, name, email FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

func (db *DB) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return db.queryUser(ctx, `SELECT id, name, email FROM users WHERE id = ?`, id)
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return db.queryUser(ctx, `SELECT id, name, email FROM users WHERE email = ?`, email)
}

func (db *DB) queryUser(ctx context.Context, query string, args ...any) (*models.User, error) {
	var u models.User
	err := db.q.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.Name, &u.Email)
	if err != nil {
		return nil, notFoundOr(err, "failed to get user")
	}
	return &u, nil
}

func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	result, err := db.q.ExecContext(ctx, `INSERT INTO users (name, email) VALUES (?, ?)`, user.Name, user.Email)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	user.ID = id
	return nil
}

func (db *DB) UpdateUser(ctx context.Context, user *models.User) error {
	result, err := db.q.ExecContext(ctx, `UPDATE users SET name = ?, email = ? WHERE id = ?`, user.Name, user.Email, user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return checkAffected(result, "user")
}

// DeleteUser removes the user together with everything that references it.
func (db *DB) DeleteUser(ctx context.Context, id int64) error {
	return db.WithinTx(ctx, func(tx domain.Repository) error {
		t := tx.(*DB)

		itemIDs, err := t.itemIDsByHost(ctx, id)
		if err != nil {
			return err
		}
		for _, itemID := range itemIDs {
			if err := t.deleteItemCascade(ctx, itemID); err != nil {
				return err
			}
		}

		stmts := []string{
			`DELETE FROM comments WHERE author_id = ?`,
			`DELETE FROM bookings WHERE booker_id = ?`,
			`UPDATE items SET request_id = NULL WHERE request_id IN (SELECT id FROM requests WHERE user_id = ?)`,
			`DELETE FROM request_items WHERE request_id IN (SELECT id FROM requests WHERE user_id = ?)`,
			`DELETE FROM requests WHERE user_id = ?`,
		}
		for _, stmt := range stmts {
			if _, err := t.q.ExecContext(ctx, stmt, id); err != nil {
				return fmt.Errorf("failed to delete user dependents: %w", err)
			}
		}

		result, err := t.q.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return checkAffected(result, "user")
	})
}

func checkAffected(result interface{ RowsAffected() (int64, error) }, entity string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows for %s: %w", entity, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
