package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"
)

const bookingSelect = `SELECT b.id, b.start_at, b.end_at, b.status, b.booker_id, b.item_id,
		u.id, u.name, u.email,
		i.id, i.name, i.description, i.available, i.host_id, i.request_id
	FROM bookings b
	JOIN users u ON u.id = b.booker_id
	JOIN items i ON i.id = b.item_id`

func scanBooking(row rowScanner) (*models.Booking, error) {
	var (
		b          models.Booking
		booker     models.User
		item       models.Item
		start, end int64
		status     string
		requestID  sql.NullInt64
	)
	err := row.Scan(
		&b.ID, &start, &end, &status, &b.BookerID, &b.ItemID,
		&booker.ID, &booker.Name, &booker.Email,
		&item.ID, &item.Name, &item.Description, &item.Available, &item.HostID, &requestID,
	)
	if err != nil {
		return nil, err
	}
	if requestID.Valid {
		id := requestID.Int64
		item.RequestID = &id
	}

	b.Start = time.Unix(start, 0)
	b.End = time.Unix(end, 0)
	b.Status = models.BookingStatus(status)
	b.Booker = &booker
	b.Item = &item
	return &b, nil
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...any) ([]*models.Booking, error) {
	rows, err := db.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (db *DB) queryBooking(ctx context.Context, query string, args ...any) (*models.Booking, error) {
	b, err := scanBooking(db.q.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	b, err := db.queryBooking(ctx, bookingSelect+` WHERE b.id = ?`, id)
	if err != nil {
		return nil, notFoundOr(err, "failed to get booking %d", id)
	}
	return b, nil
}

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	result, err := db.q.ExecContext(ctx,
		`INSERT INTO bookings (start_at, end_at, status, booker_id, item_id) VALUES (?, ?, ?, ?, ?)`,
		booking.Start.Unix(), booking.End.Unix(), string(booking.Status), booking.BookerID, booking.ItemID)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	return nil
}

func (db *DB) UpdateBookingStatus(ctx context.Context, id int64, status models.BookingStatus) error {
	result, err := db.q.ExecContext(ctx, `UPDATE bookings SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	return checkAffected(result, "booking")
}

// stateFilter translates a state window into a WHERE fragment and its arguments.
func stateFilter(state models.BookingState, now time.Time) (string, []any, error) {
	ts := now.Unix()
	approved := string(models.StatusApproved)

	switch state {
	case models.StateAll:
		return "", nil, nil
	case models.StateWaiting:
		return ` AND b.status = ?`, []any{string(models.StatusWaiting)}, nil
	case models.StateRejected:
		return ` AND b.status = ?`, []any{string(models.StatusRejected)}, nil
	case models.StateCurrent:
		return ` AND b.status = ? AND b.start_at < ? AND b.end_at > ?`, []any{approved, ts, ts}, nil
	case models.StatePast:
		return ` AND b.status = ? AND b.end_at < ?`, []any{approved, ts}, nil
	case models.StateFuture:
		return ` AND b.status = ? AND b.start_at > ?`, []any{approved, ts}, nil
	default:
		return "", nil, fmt.Errorf("%w: unknown state %q", domain.ErrValidation, state)
	}
}

func (db *DB) ListBookingsByBooker(ctx context.Context, bookerID int64, state models.BookingState, now time.Time) ([]*models.Booking, error) {
	filter, args, err := stateFilter(state, now)
	if err != nil {
		return nil, err
	}
	query := bookingSelect + ` WHERE b.booker_id = ?` + filter + ` ORDER BY b.id`
	return db.queryBookings(ctx, query, append([]any{bookerID}, args...)...)
}

func (db *DB) ListBookingsByOwner(ctx context.Context, hostID int64, state models.BookingState, now time.Time) ([]*models.Booking, error) {
	filter, args, err := stateFilter(state, now)
	if err != nil {
		return nil, err
	}
	query := bookingSelect + ` WHERE i.host_id = ?` + filter + ` ORDER BY b.id`
	return db.queryBookings(ctx, query, append([]any{hostID}, args...)...)
}

func (db *DB) ListPastApprovedBookings(ctx context.Context, itemID, bookerID int64, now time.Time) ([]*models.Booking, error) {
	query := bookingSelect + ` WHERE b.item_id = ? AND b.booker_id = ? AND b.status = ? AND b.end_at < ? ORDER BY b.id`
	return db.queryBookings(ctx, query, itemID, bookerID, string(models.StatusApproved), now.Unix())
}

func (db *DB) FindLastBooking(ctx context.Context, itemID int64, before time.Time) (*models.Booking, error) {
	query := bookingSelect + ` WHERE b.item_id = ? AND b.status = ? AND b.end_at < ?
		ORDER BY b.end_at DESC, b.id DESC LIMIT 1`
	return db.optionalBooking(ctx, query, itemID, string(models.StatusApproved), before.Unix())
}

func (db *DB) FindNextBooking(ctx context.Context, itemID int64, after time.Time) (*models.Booking, error) {
	query := bookingSelect + ` WHERE b.item_id = ? AND b.status = ? AND b.start_at > ?
		ORDER BY b.start_at ASC, b.id ASC LIMIT 1`
	return db.optionalBooking(ctx, query, itemID, string(models.StatusApproved), after.Unix())
}

// optionalBooking returns nil without error when nothing matches.
func (db *DB) optionalBooking(ctx context.Context, query string, args ...any) (*models.Booking, error) {
	b, err := db.queryBooking(ctx, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return b, nil
}
