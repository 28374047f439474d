package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/soundbuddy/soundbuddy/internal/models"
	"github.com/soundbuddy/soundbuddy/internal/repository"
)

var ErrNegativeFee = errors.New("booking fee must not be negative")

type BookingService struct {
	bookingRepo repository.BookingRepo
}

func NewService(bookingRepo repository.BookingRepo) *BookingService {
	return &BookingService{bookingRepo: bookingRepo}
}

type CreateParams struct {
	EventName string
	EventDate time.Time
	Venue     string
	Fee       decimal.Decimal
}

func (s *BookingService) Create(ctx context.Context, userID uuid.UUID, arg CreateParams) (models.Booking, error) {
	var booking models.Booking

	if arg.Fee.IsNegative() {
		return booking, ErrNegativeFee
	}

	booking, err := s.bookingRepo.CreateBooking(ctx, repository.CreateBookingParams{
		UserID:    userID,
		EventName: arg.EventName,
		EventDate: arg.EventDate,
		Venue:     arg.Venue,
		Fee:       arg.Fee,
	})
	if err != nil {
		return booking, fmt.Errorf("can't create booking. Err: %w", err)
	}

	return booking, nil
}

// ListForUser returns the user's bookings ordered by event date
func (s *BookingService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Booking, error) {
	bookings, err := s.bookingRepo.ListBookings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("can't list bookings. Err: %w", err)
	}

	return bookings, nil
}
