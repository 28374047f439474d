package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/soundbuddy/soundbuddy/internal/models"
)

type CreateUserParams struct {
	Name           string
	Email          string
	HashedPassword string
	Role           models.Role
	Tags           []string
}

// User repository interface
type UserRepo interface {
	// Create user
	// If user with the email exists already has to return apperrors.ErrUserAlreadyExists
	// The unique index on email is the source of truth, there is no separate pre check
	CreateUser(ctx context.Context, arg CreateUserParams) (models.User, error)

	// Get user by id or email
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	// Exact string match against the stored refresh token
	// If no user holds the token must return apperrors.ErrUserNotFound
	GetUserByRefreshToken(ctx context.Context, token string) (models.User, error)

	// Set (or clear, when nil) the user's current refresh token
	// Overwrites whatever token was stored before: sessions are not stacked
	SetRefreshToken(ctx context.Context, userID uuid.UUID, token *string) (models.User, error)

	// Record a successful login
	SetLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) (models.User, error)

	// Clear stored refresh tokens written before the cutoff
	// Tokens that old are past their signed expiry anyway, keeping them
	// only widens the window for replay attempts
	ClearExpiredRefreshTokens(ctx context.Context, cutoff time.Time) (int64, error)

	ListUsers(ctx context.Context) ([]models.User, error)
}

type CreatePostParams struct {
	AuthorID uuid.UUID
	Content  string
	Media    *models.Media
	Tags     []string
}

// Post repository interface
type PostRepo interface {
	CreatePost(ctx context.Context, arg CreatePostParams) (models.Post, error)

	// If post not found must return apperrors.ErrPostNotFound
	GetPost(ctx context.Context, postID uuid.UUID) (models.Post, error)

	// Newest first
	ListPosts(ctx context.Context) ([]models.Post, error)

	AddLike(ctx context.Context, postID uuid.UUID) (models.Post, error)
	RemoveLike(ctx context.Context, postID uuid.UUID) (models.Post, error)
}

type CreateBookingParams struct {
	UserID    uuid.UUID
	EventName string
	EventDate time.Time
	Venue     string
	Fee       decimal.Decimal
}

// Booking repository interface
type BookingRepo interface {
	CreateBooking(ctx context.Context, arg CreateBookingParams) (models.Booking, error)
	ListBookings(ctx context.Context, userID uuid.UUID) ([]models.Booking, error)
}

// Storage aggregates all repositories over a single connection source
type Storage interface {
	User() UserRepo
	Post() PostRepo
	Booking() BookingRepo

	// Run fn within a database transaction
	InTx(ctx context.Context, fn func(Storage) error) error
}
