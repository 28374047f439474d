package middleware

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/soundbuddy/soundbuddy/internal/apperrors"
	"github.com/soundbuddy/soundbuddy/internal/handlers/render"
	"github.com/soundbuddy/soundbuddy/internal/handlers/userctx"
)

type authService interface {
	// Validate the request's access token and return the identity it carries
	// Must fail with apperrors.ErrTokenMissing, ErrTokenExpired or
	// ErrTokenInvalid so the gate can answer distinctly
	AuthenticateRequest(r *http.Request) (uuid.UUID, error)
}

// AuthMiddleware gates protected routes
// No token at all is 401; a token that is present but expired answers
// differently from a malformed one, so clients know whether a refresh is
// worth trying or a full re-login is needed
func AuthMiddleware(as authService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := as.AuthenticateRequest(r)

			switch {
			case err == nil:
				ctx := userctx.New(r.Context(), userID)
				next.ServeHTTP(w, r.WithContext(ctx))
			case errors.Is(err, apperrors.ErrTokenMissing):
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
			case errors.Is(err, apperrors.ErrTokenExpired):
				render.ServiceError(w, "Token expired", http.StatusForbidden)
			default:
				render.ServiceError(w, "Invalid token", http.StatusForbidden)
			}
		})
	}
}
