package sessioncleaner

import (
	"context"
	"time"

	"github.com/soundbuddy/soundbuddy/internal/logger"
)

const defaultCleanInterval = time.Hour

type userRepo interface {
	ClearExpiredRefreshTokens(ctx context.Context, cutoff time.Time) (int64, error)
}

// Cleaner periodically clears stored refresh tokens that are past their
// signed expiry. Refreshing with such a token fails at the JWT check
// already, this just stops dead sessions from piling up in the users table
type Cleaner struct {
	interval time.Duration
	ttl      time.Duration

	userRepo userRepo
	logger   logger.Logger
}

// New creates a cleaner for tokens issued with the given ttl
// If interval is zero a default is used
func New(interval time.Duration, ttl time.Duration, userRepo userRepo, l logger.Logger) *Cleaner {
	if interval == 0 {
		interval = defaultCleanInterval
	}

	return &Cleaner{
		interval: interval,
		ttl:      ttl,
		userRepo: userRepo,
		logger:   l,
	}
}

// Run starts the cleaning loop until the context is cancelled
// The returned channel closes when the loop has fully stopped
func (c *Cleaner) Run(ctx context.Context) <-chan struct{} {
	idleStopped := make(chan struct{})
	c.logger.Debug("Starting session cleaner", "interval", c.interval, "token_ttl", c.ttl)

	go func() {
		defer close(idleStopped)

		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				c.logger.Debug("Session cleaner stopped by context")
				return

			case <-ticker.C:
				cutoff := time.Now().Add(-c.ttl)

				cleared, err := c.userRepo.ClearExpiredRefreshTokens(ctx, cutoff)
				if err != nil {
					c.logger.Error("Failed to clear expired sessions", "error", err)
					continue
				}

				if cleared > 0 {
					c.logger.Info("Cleared expired sessions", "count", cleared)
				}
			}
		}
	}()

	return idleStopped
}
