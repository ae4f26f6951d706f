package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultSweepInterval = 1 * time.Hour

// TokenSweeper periodically deletes expired refresh tokens. Expired rows are
// already rejected on use; sweeping only keeps the table small.
type TokenSweeper struct {
	tokens *TokenService
	logger *zap.Logger

	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewTokenSweeper(tokens *TokenService, logger *zap.Logger) *TokenSweeper {
	return &TokenSweeper{
		tokens:   tokens,
		logger:   logger,
		interval: defaultSweepInterval,
		stopCh:   make(chan struct{}),
	}
}

func (s *TokenSweeper) SetInterval(d time.Duration) {
	if d > 0 {
		s.interval = d
	}
}

// Start runs the sweeper on a periodic schedule in a background goroutine.
func (s *TokenSweeper) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("refresh token sweeper started", zap.Duration("interval", s.interval))

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				s.run(ctx)
				cancel()
			case <-s.stopCh:
				s.logger.Info("refresh token sweeper stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the sweeper.
func (s *TokenSweeper) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

func (s *TokenSweeper) run(ctx context.Context) {
	deleted, err := s.tokens.SweepExpired(ctx)
	if err != nil {
		s.logger.Error("failed to delete expired refresh tokens", zap.Error(err))
		return
	}
	if deleted > 0 {
		s.logger.Info("deleted expired refresh tokens", zap.Int64("count", deleted))
	}
}
