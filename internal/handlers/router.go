package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/soundbuddy/soundbuddy/internal/handlers/middleware"
	"github.com/soundbuddy/soundbuddy/internal/models"
	"github.com/soundbuddy/soundbuddy/internal/service/auth"
	"github.com/soundbuddy/soundbuddy/internal/service/booking"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	authHandler *AuthHandler,
	userHandler *UserHandler,
	postHandler *PostHandler,
	bookingHandler *BookingHandler,
	healthHandler *HealthHandler,
	middlewares ...func(http.Handler) http.Handler,
) http.Handler {
	authMiddleware := middleware.AuthMiddleware(authHandler.authService)
	withAuth := func(h http.HandlerFunc) http.Handler {
		return authMiddleware(h)
	}

	api := http.NewServeMux()

	// Session lifecycle, open to everyone
	api.HandleFunc("POST /users/create", authHandler.register)
	api.HandleFunc("POST /login", authHandler.login)
	api.HandleFunc("GET /refresh-token", authHandler.refresh)
	// Logout reads the bearer token itself: its 401/403 split differs
	// from what the auth middleware answers
	api.HandleFunc("POST /logout", authHandler.logout)

	// Protected routes
	api.Handle("GET /user", withAuth(userHandler.me))
	api.Handle("GET /users", withAuth(userHandler.list))

	api.Handle("POST /posts", withAuth(postHandler.create))
	api.Handle("GET /posts", withAuth(postHandler.list))
	api.Handle("POST /posts/{id}/like", withAuth(postHandler.like))
	api.Handle("DELETE /posts/{id}/like", withAuth(postHandler.unlike))

	api.Handle("POST /bookings", withAuth(bookingHandler.create))
	api.Handle("GET /bookings", withAuth(bookingHandler.list))

	// Heartbeat, open to everyone
	api.HandleFunc("GET /health", healthHandler.api)
	api.HandleFunc("GET /health/database", healthHandler.database)

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))

	return chain(root, middlewares...)
}

type authService interface {
	// Register user and start its first session
	// Has to return apperrors.ErrUserAlreadyExists if the email is taken
	Register(ctx context.Context, arg auth.RegisterParams) (models.User, models.TokenPair, error)

	// Login with email and password
	// Has to return apperrors.ErrInvalidCredentials on any credential failure
	Login(ctx context.Context, email string, password string) (models.User, models.TokenPair, error)

	// Rotate tokens using a valid refresh token
	// Failure modes: apperrors.ErrTokenExpired, ErrTokenInvalid,
	// ErrTokenNotAssociated, ErrTokenMismatch
	RefreshPair(ctx context.Context, refresh string) (models.TokenPair, error)

	// End the session identified by the access token
	Logout(ctx context.Context, access string) error

	// Token transport: request extraction and response stamping
	ReadAccessToken(r *http.Request) (string, error)
	ReadRefreshToken(r *http.Request) (string, error)
	SetTokenPairToResponse(w http.ResponseWriter, pair models.TokenPair)
	ClearRefreshCookie(w http.ResponseWriter)

	// Validate the request's access token, used by the auth middleware
	AuthenticateRequest(r *http.Request) (uuid.UUID, error)
}

type userService interface {
	GetByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
}

type postService interface {
	CreatePost(ctx context.Context, authorID uuid.UUID, content string, media *models.Media) (models.Post, error)
	ListFeed(ctx context.Context) ([]models.Post, error)
	Like(ctx context.Context, postID uuid.UUID) (models.Post, error)
	Unlike(ctx context.Context, postID uuid.UUID) (models.Post, error)
}

type bookingService interface {
	Create(ctx context.Context, userID uuid.UUID, arg booking.CreateParams) (models.Booking, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Booking, error)
}
