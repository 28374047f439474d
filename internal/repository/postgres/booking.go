package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/soundbuddy/soundbuddy/internal/models"
	"github.com/soundbuddy/soundbuddy/internal/repository"
)

type BookingRepo struct {
	DB DBTX
}

const bookingColumns = `id, user_id, created_at, event_name, event_date, venue, fee`

const createBooking = `-- name: CreateBooking
INSERT INTO bookings (id, user_id, event_name, event_date, venue, fee)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + bookingColumns

func (r *BookingRepo) CreateBooking(ctx context.Context, arg repository.CreateBookingParams) (models.Booking, error) {
	rows, _ := r.DB.Query(ctx, createBooking, uuid.New(), arg.UserID, arg.EventName, arg.EventDate, arg.Venue, arg.Fee)
	booking, err := pgx.CollectOneRow(rows, rowToBooking)
	if err != nil {
		return booking, fmt.Errorf("db error: %w", err)
	}

	return booking, nil
}

const listBookings = `-- name: ListBookings
SELECT ` + bookingColumns + ` FROM bookings
WHERE user_id = $1
ORDER BY event_date
`

func (r *BookingRepo) ListBookings(ctx context.Context, userID uuid.UUID) ([]models.Booking, error) {
	rows, _ := r.DB.Query(ctx, listBookings, userID)
	bookings, err := pgx.CollectRows(rows, rowToBooking)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return bookings, nil
}

func rowToBooking(row pgx.CollectableRow) (models.Booking, error) {
	var b models.Booking
	err := row.Scan(&b.ID, &b.UserID, &b.CreatedAt, &b.EventName, &b.EventDate, &b.Venue, &b.Fee)
	return b, err
}
