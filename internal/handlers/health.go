package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/soundbuddy/soundbuddy/internal/handlers/render"
	"github.com/soundbuddy/soundbuddy/internal/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db     pinger
	logger logger.Logger
}

func NewHealth(db pinger, l logger.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: l}
}

type healthResponse struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *HealthHandler) api(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, healthResponse{
		Status:    "success",
		Message:   "API is running",
		Timestamp: time.Now().UTC(),
	})
}

func (h *HealthHandler) database(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		h.logger.Error("Database health check failed", "error", err)
		render.JSONWithStatus(w, healthResponse{
			Status:    "error",
			Message:   "Database connection failed",
			Timestamp: time.Now().UTC(),
		}, http.StatusServiceUnavailable)
		return
	}

	render.JSON(w, healthResponse{
		Status:    "success",
		Message:   "Database connection is healthy",
		Timestamp: time.Now().UTC(),
	})
}
