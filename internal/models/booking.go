package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Booking is a show or event engagement tracked by an artist
type Booking struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	CreatedAt time.Time
	EventName string
	EventDate time.Time
	Venue     string
	Fee       decimal.Decimal
}
