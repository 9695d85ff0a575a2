package feed

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sam-maryland/losers-bracket/internal/bracket"
	"github.com/sam-maryland/losers-bracket/internal/espn"
	"github.com/sam-maryland/losers-bracket/internal/sleeper"
	"github.com/sirupsen/logrus"
)

const (
	defaultRetryAttempts = 3
	defaultRetryInterval = 200 * time.Millisecond
)

// Retrying retries snapshot fetches with exponential backoff. Live fetches
// pass straight through: a failed live week is reported, not retried.
type Retrying struct {
	inner       Feed
	logger      *logrus.Logger
	maxAttempts int
	newBackOff  func() backoff.BackOff
}

// NewRetrying wraps inner with retries. Non-positive values select defaults.
func NewRetrying(inner Feed, logger *logrus.Logger, maxAttempts int, initial time.Duration) *Retrying {
	if maxAttempts <= 0 {
		maxAttempts = defaultRetryAttempts
	}
	if initial <= 0 {
		initial = defaultRetryInterval
	}
	return &Retrying{
		inner:       inner,
		logger:      logger,
		maxAttempts: maxAttempts,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = initial
			b.MaxElapsedTime = 0
			return b
		},
	}
}

func (r *Retrying) Name() string { return r.inner.Name() }

func (r *Retrying) Snapshot(ctx context.Context) (bracket.Snapshot, error) {
	var snap bracket.Snapshot
	attempt := 0
	operation := func() error {
		attempt++
		s, err := r.inner.Snapshot(ctx)
		if err != nil {
			if !Retryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		snap = s
		return nil
	}
	notify := func(err error, delay time.Duration) {
		r.logger.WithFields(logrus.Fields{
			"feed":         r.inner.Name(),
			"attempt":      attempt,
			"max_attempts": r.maxAttempts,
			"delay":        delay.String(),
		}).WithError(err).Warn("Snapshot fetch failed, retrying")
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(r.newBackOff(), uint64(r.maxAttempts-1)), ctx)
	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return bracket.Snapshot{}, err
	}
	return snap, nil
}

func (r *Retrying) LiveMatchups(ctx context.Context, week int) ([]bracket.Matchup, error) {
	return r.inner.LiveMatchups(ctx, week)
}

// Retryable reports whether a feed error is worth another attempt. Client
// errors other than rate limiting are final, as is a cancelled context.
func Retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	status := 0
	var sleeperErr *sleeper.SleeperError
	var espnErr *espn.APIError
	switch {
	case errors.As(err, &sleeperErr):
		status = sleeperErr.StatusCode
	case errors.As(err, &espnErr):
		status = espnErr.StatusCode
	}
	if status == http.StatusTooManyRequests {
		return true
	}
	return status < 400 || status >= 500
}
