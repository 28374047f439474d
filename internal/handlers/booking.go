package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/soundbuddy/soundbuddy/internal/handlers/render"
	"github.com/soundbuddy/soundbuddy/internal/handlers/userctx"
	"github.com/soundbuddy/soundbuddy/internal/logger"
	"github.com/soundbuddy/soundbuddy/internal/models"
	"github.com/soundbuddy/soundbuddy/internal/service/booking"
)

type BookingHandler struct {
	bookingService bookingService
	logger         logger.Logger
}

func NewBooking(bookings bookingService, l logger.Logger) *BookingHandler {
	return &BookingHandler{bookingService: bookings, logger: l}
}

type bookingResponse struct {
	ID        uuid.UUID       `json:"id"`
	EventName string          `json:"eventName"`
	EventDate time.Time       `json:"eventDate"`
	Venue     string          `json:"venue"`
	Fee       decimal.Decimal `json:"fee"`
	CreatedAt time.Time       `json:"createdAt"`
}

func newBookingResponse(b models.Booking) bookingResponse {
	return bookingResponse{
		ID:        b.ID,
		EventName: b.EventName,
		EventDate: b.EventDate,
		Venue:     b.Venue,
		Fee:       b.Fee,
		CreatedAt: b.CreatedAt,
	}
}

func (h *BookingHandler) create(w http.ResponseWriter, r *http.Request) {
	type CreateBookingRequest struct {
		EventName string          `json:"eventName" validate:"required,max=200"`
		EventDate time.Time       `json:"eventDate" validate:"required"`
		Venue     string          `json:"venue" validate:"required,max=200"`
		Fee       decimal.Decimal `json:"fee"`
	}

	userID, ok := userctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data, err := render.BindAndValidate[CreateBookingRequest](w, r)
	if err != nil {
		return
	}

	created, err := h.bookingService.Create(r.Context(), userID, booking.CreateParams{
		EventName: data.EventName,
		EventDate: data.EventDate,
		Venue:     data.Venue,
		Fee:       data.Fee,
	})

	switch {
	case err == nil:
		render.JSONWithStatus(w, newBookingResponse(created), http.StatusCreated)
	case errors.Is(err, booking.ErrNegativeFee):
		render.ServiceError(w, "Booking fee must not be negative", http.StatusBadRequest)
	default:
		h.logger.Error("Failed to create booking", "error", err)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *BookingHandler) list(w http.ResponseWriter, r *http.Request) {
	userID, ok := userctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	bookings, err := h.bookingService.ListForUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list bookings", "error", err)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	response := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		response = append(response, newBookingResponse(b))
	}

	render.JSON(w, response)
}
