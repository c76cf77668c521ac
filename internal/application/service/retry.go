package service

import (
	"context"
	"errors"
	"time"

	"github.com/sangkips/studio-ledger/pkg/apperror"
	"go.uber.org/zap"
)

// RetryPolicy bounds how often a unit of work is re-run after losing a race
// for an order's lock
type RetryPolicy struct {
	MaxRetries int
	Backoff    time.Duration
}

// DefaultRetryPolicy is used when no policy is configured
var DefaultRetryPolicy = RetryPolicy{MaxRetries: 3, Backoff: 50 * time.Millisecond}

// run calls fn until it succeeds, fails with anything other than a
// concurrent modification, or the retries are used up. Waits grow linearly.
func (p RetryPolicy) run(ctx context.Context, logger *zap.Logger, op string, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, apperror.ErrConcurrentModification) || attempt >= p.MaxRetries {
			return err
		}

		wait := p.Backoff * time.Duration(attempt+1)
		logger.Debug("retrying ledger operation",
			zap.String("operation", op),
			zap.Int("attempt", attempt+1),
			zap.Duration("wait", wait),
			zap.Error(err))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}
