package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/soundbuddy/soundbuddy/internal/db"
	"github.com/soundbuddy/soundbuddy/internal/handlers"
	"github.com/soundbuddy/soundbuddy/internal/handlers/middleware"
	"github.com/soundbuddy/soundbuddy/internal/logger"
	"github.com/soundbuddy/soundbuddy/internal/repository/postgres"
	"github.com/soundbuddy/soundbuddy/internal/service/auth"
	"github.com/soundbuddy/soundbuddy/internal/service/auth/tokenmanager"
	"github.com/soundbuddy/soundbuddy/internal/service/booking"
	"github.com/soundbuddy/soundbuddy/internal/service/post"
	"github.com/soundbuddy/soundbuddy/internal/service/sessioncleaner"
	"github.com/soundbuddy/soundbuddy/internal/service/user"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
	Logger     logger.Logger
	Cleaner    *sessioncleaner.Cleaner
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// Initialize logger
	log, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Initialize services
	tokenManager, err := tokenmanager.New(tokenmanager.Config{
		AccessSecret:  c.AccessTokenSecret,
		RefreshSecret: c.RefreshTokenSecret,
	}, storage.User())
	if err != nil {
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}

	authService, err := auth.NewService(auth.Config{}, tokenManager, storage.User())
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}
	userService := user.NewService(storage.User())
	postService := post.NewService(storage.Post())
	bookingService := booking.NewService(storage.Booking())

	// Initialize handlers and complete them as router
	mux := handlers.NewRouter(
		handlers.NewAuth(authService, log),
		handlers.NewUser(userService, log),
		handlers.NewPost(postService, log),
		handlers.NewBooking(bookingService, log),
		handlers.NewHealth(pool, log),
		middleware.LoggerMiddleware(log),
		middleware.CORSMiddleware(middleware.CORSConfig{AllowedOrigins: c.CORSAllowedOrigins}),
	)

	cleaner := sessioncleaner.New(0, tokenManager.RefreshTTL(), storage.User(), log)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
		Logger:     log,
		Cleaner:    cleaner,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	cleanerStopped := s.Cleaner.Run(srvCtx)

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			s.Logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.Logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close connections gracefully
	s.Logger.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed
	<-cleanerStopped

	return err
}
