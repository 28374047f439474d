package e2e

import (
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stretchr/testify/require"

	"github.com/soundbuddy/soundbuddy/internal/handlers"
	"github.com/soundbuddy/soundbuddy/internal/logger"
	"github.com/soundbuddy/soundbuddy/internal/repository/postgres"
	"github.com/soundbuddy/soundbuddy/internal/service/auth"
	"github.com/soundbuddy/soundbuddy/internal/service/auth/tokenmanager"
	"github.com/soundbuddy/soundbuddy/internal/service/booking"
	"github.com/soundbuddy/soundbuddy/internal/service/post"
	"github.com/soundbuddy/soundbuddy/internal/service/user"
	"github.com/soundbuddy/soundbuddy/internal/testutil"
)

type Services struct {
	AuthService    *auth.AuthService
	UserService    *user.UserService
	PostService    *post.PostService
	BookingService *booking.BookingService
}

// Create db transaction and run the full API server on that connection
// (one connection cause one transaction)
// The created transaction passed to inner function: so, you can safely use
// testutil.WithTx with it
func ServeWithTx(dbpool *pgxpool.Pool, t *testing.T, fn func(tx pgx.Tx, srvURL string, services Services)) {
	testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
		log := logger.NewNoOpLogger()
		storage := postgres.NewStorage(tx)

		// Initialize services
		tokenManager, err := tokenmanager.New(tokenmanager.Config{
			AccessSecret:  "test-access-secret",
			RefreshSecret: "test-refresh-secret",
		}, storage.User())
		require.NoError(t, err, "token manager should be created without errors")

		as, err := auth.NewService(auth.Config{}, tokenManager, storage.User())
		require.NoError(t, err, "auth service starting error", err)

		us := user.NewService(storage.User())
		ps := post.NewService(storage.Post())
		bs := booking.NewService(storage.Booking())

		// Complete all together as router
		router := handlers.NewRouter(
			handlers.NewAuth(as, log),
			handlers.NewUser(us, log),
			handlers.NewPost(ps, log),
			handlers.NewBooking(bs, log),
			handlers.NewHealth(dbpool, log),
		)

		// Run http server with the router in transaction
		srv := httptest.NewServer(router)
		defer srv.Close()

		fn(tx, srv.URL, Services{
			AuthService:    as,
			UserService:    us,
			PostService:    ps,
			BookingService: bs,
		})
	})
}
