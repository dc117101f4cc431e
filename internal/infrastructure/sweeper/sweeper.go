// Package sweeper reclaims storage held by expired tokens and reset codes.
// Expiry is enforced at lookup, so a late or skipped sweep never changes
// which tokens are accepted.
package sweeper

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"mediahub/internal/core/ports"
)

// Metrics receives the number of rows removed per sweep.
type Metrics interface {
	RecordSwept(kind string, n int64)
}

// Locker keeps replicas sharing a store from sweeping at the same time.
type Locker interface {
	TryAcquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// Config contains sweeper configuration
type Config struct {
	Interval time.Duration
	// Grace keeps records around for a while after they expire.
	Grace time.Duration
}

// TokenSweeper periodically deletes expired tokens and password resets.
type TokenSweeper struct {
	tokens   ports.TokenRepository
	resets   ports.PasswordResetRepository
	metrics  Metrics
	locker   Locker
	interval time.Duration
	grace    time.Duration
	now      ports.Clock
	logger   *zap.SugaredLogger
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewTokenSweeper creates a new sweeper. metrics may be nil.
func NewTokenSweeper(
	tokens ports.TokenRepository,
	resets ports.PasswordResetRepository,
	metrics Metrics,
	cfg Config,
	logger *zap.SugaredLogger,
) *TokenSweeper {
	return &TokenSweeper{
		tokens:   tokens,
		resets:   resets,
		metrics:  metrics,
		interval: cfg.Interval,
		grace:    cfg.Grace,
		now:      time.Now,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// WithLocker makes each sweep conditional on holding l.
func (s *TokenSweeper) WithLocker(l Locker) *TokenSweeper {
	s.locker = l
	return s
}

// Start runs a sweep immediately and then on every tick until ctx is done or
// Stop is called.
func (s *TokenSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Sweep(ctx)

	for {
		select {
		case <-ticker.C:
			s.Sweep(ctx)
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop stops the sweeper
func (s *TokenSweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

// Sweep performs one pass. Failures are logged and retried on the next tick.
func (s *TokenSweeper) Sweep(ctx context.Context) {
	if s.locker != nil {
		ok, err := s.locker.TryAcquire(ctx)
		if err != nil {
			s.logger.Warnw("failed to acquire sweep lock", "error", err)
			return
		}
		if !ok {
			s.logger.Debugw("sweep skipped, another instance holds the lock")
			return
		}
		defer func() {
			if err := s.locker.Release(ctx); err != nil {
				s.logger.Warnw("failed to release sweep lock", "error", err)
			}
		}()
	}

	cutoff := s.now().UTC().Add(-s.grace)

	tokens, err := s.tokens.DeleteExpired(ctx, cutoff)
	if err != nil {
		s.logger.Errorw("failed to sweep expired tokens", "error", err)
	}
	resets, err := s.resets.DeleteExpired(ctx, cutoff)
	if err != nil {
		s.logger.Errorw("failed to sweep expired reset codes", "error", err)
	}

	if s.metrics != nil {
		s.metrics.RecordSwept("tokens", tokens)
		s.metrics.RecordSwept("password_resets", resets)
	}
	if tokens > 0 || resets > 0 {
		s.logger.Infow("swept expired records", "tokens", tokens, "password_resets", resets, "cutoff", cutoff)
	}
}
