package auth

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper periodically deletes expired tokens.
type Sweeper struct {
	auth     *Authenticator
	interval time.Duration
	log      *slog.Logger
}

func NewSweeper(auth *Authenticator, interval time.Duration, log *slog.Logger) *Sweeper {
	if log == nil {
		log = slog.Default()
	}
	return &Sweeper{auth: auth, interval: interval, log: log}
}

// Run sweeps once immediately, then on every tick, until ctx is done. A
// non-positive interval disables the sweeper.
func (s *Sweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.log.Info("token sweeper disabled")
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("token sweeper started", "interval", s.interval)
	s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			s.log.Info("token sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	n, err := s.auth.CleanupExpiredTokens(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.log.Error("token sweep failed", "error", err)
		}
		return
	}
	if n > 0 {
		s.log.Info("expired tokens removed", "count", n)
	}
}
