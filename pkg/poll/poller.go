// Package poll implements the client-side wait loop for asynchronous
// enrichment: check the product status on a fixed interval until it reaches a
// terminal state or the attempt budget runs out.
package poll

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTimeout is returned when the attempt budget is exhausted before the
// record reaches a terminal state.
var ErrTimeout = errors.New("poll: attempt budget exhausted")

// Fetch checks the remote state once. It reports the observed status, whether
// that status is terminal, and any transport error. Transport errors abort the
// loop; a slow pipeline does not.
type Fetch func(ctx context.Context) (status string, done bool, err error)

type Poller struct {
	Interval    time.Duration
	MaxAttempts int
}

// New returns a poller with the documented client contract: a status check
// every 10 seconds, giving up after 30 attempts (five minutes).
func New() Poller {
	return Poller{
		Interval:    10 * time.Second,
		MaxAttempts: 30,
	}
}

// Wait runs fetch until it reports a terminal status, the attempt budget runs
// out, or ctx is canceled. The first check happens immediately. It returns the
// last observed status.
func (p Poller) Wait(ctx context.Context, fetch Fetch) (string, error) {
	interval := p.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 30
	}

	var lastStatus string
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		status, done, err := fetch(ctx)
		if err != nil {
			return lastStatus, fmt.Errorf("poll attempt %d: %w", attempt, err)
		}
		lastStatus = status
		if done {
			return status, nil
		}
		if attempt == maxAttempts {
			break
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return lastStatus, ctx.Err()
		case <-timer.C:
		}
	}
	return lastStatus, ErrTimeout
}
