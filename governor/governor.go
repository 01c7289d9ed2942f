package governor

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Governor enforces the run's pacing and retry discipline: a short pause
// between consecutive events, a longer pause after every BatchSize events
// to emulate human browsing cadence, and a bounded retry budget for
// transient navigation faults. The policy is fixed, not adaptive.
type Governor struct {
	EventPause time.Duration
	BatchSize  int
	BatchPause time.Duration
	Retries    int

	sleep func(time.Duration)
}

// New creates a Governor with the given policy.
func New(eventPause time.Duration, batchSize int, batchPause time.Duration, retries int) *Governor {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Governor{
		EventPause: eventPause,
		BatchSize:  batchSize,
		BatchPause: batchPause,
		Retries:    retries,
	}
}

// PauseAfter blocks for the pause owed after the n-th processed event
// (1-based): the batch pause on batch boundaries, the event pause
// otherwise. It returns early when ctx is cancelled.
func (g *Governor) PauseAfter(ctx context.Context, n int) {
	d := g.EventPause
	if n > 0 && n%g.BatchSize == 0 {
		d = g.BatchPause
	}
	g.delay(ctx, d)
}

// PauseFor reports which pause the governor owes after the n-th event
// without sleeping. Exposed so the pacing policy is testable on its own.
func (g *Governor) PauseFor(n int) time.Duration {
	if n > 0 && n%g.BatchSize == 0 {
		return g.BatchPause
	}
	return g.EventPause
}

func (g *Governor) delay(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	if g.sleep != nil {
		g.sleep(d)
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// Permanent marks an error as non-retryable: environment faults and
// structural absences must never burn retry budget.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Retry runs op up to 1+Retries times with a constant event-pause wait
// between attempts. Only transient faults are retried; errors wrapped with
// Permanent stop immediately, as does context cancellation.
func (g *Governor) Retry(ctx context.Context, op func() error) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(g.EventPause), uint64(g.Retries)),
		ctx,
	)
	err := backoff.Retry(op, policy)

	// backoff returns the wrapped permanent error transparently; unwrap the
	// marker if it is still present.
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		return perm.Err
	}
	return err
}
