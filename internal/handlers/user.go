package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/soundbuddy/soundbuddy/internal/apperrors"
	"github.com/soundbuddy/soundbuddy/internal/handlers/render"
	"github.com/soundbuddy/soundbuddy/internal/handlers/userctx"
	"github.com/soundbuddy/soundbuddy/internal/logger"
	"github.com/soundbuddy/soundbuddy/internal/models"
)

// Outward representation of a user
// Password hash and refresh token never appear here
type userResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	Tags      []string   `json:"tags"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

func newUserResponse(u models.User) userResponse {
	tags := u.Tags
	if tags == nil {
		tags = []string{}
	}

	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		Tags:      tags,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
		LastLogin: u.LastLoginAt,
	}
}

type UserHandler struct {
	userService userService
	logger      logger.Logger
}

func NewUser(users userService, l logger.Logger) *UserHandler {
	return &UserHandler{userService: users, logger: l}
}

// GET /user: the authenticated caller's own record
func (h *UserHandler) me(w http.ResponseWriter, r *http.Request) {
	userID, ok := userctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)

	switch {
	case err == nil:
		render.JSON(w, newUserResponse(user))
	case errors.Is(err, apperrors.ErrUserNotFound):
		render.ServiceError(w, "User not found", http.StatusNotFound)
	default:
		h.logger.Error("Failed to get user", "error", err)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
}

// GET /users: directory of all users, secrets stripped
func (h *UserHandler) list(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list users", "error", err)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	response := make([]userResponse, 0, len(users))
	for _, u := range users {
		response = append(response, newUserResponse(u))
	}

	render.JSON(w, response)
}
