package governor

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPauseForBatchCadence(t *testing.T) {
	g := New(3*time.Second, 5, 5*time.Second, 2)

	var pauses []time.Duration
	for n := 1; n <= 10; n++ {
		pauses = append(pauses, g.PauseFor(n))
	}

	for i, d := range pauses {
		n := i + 1
		want := 3 * time.Second
		if n == 5 || n == 10 {
			want = 5 * time.Second
		}
		if d != want {
			t.Errorf("PauseFor(%d) = %v, want %v", n, d, want)
		}
	}
}

func TestPauseAfterUsesInjectedSleep(t *testing.T) {
	g := New(3*time.Second, 5, 5*time.Second, 0)
	var slept []time.Duration
	g.sleep = func(d time.Duration) { slept = append(slept, d) }

	ctx := context.Background()
	for n := 1; n <= 5; n++ {
		g.PauseAfter(ctx, n)
	}

	want := []time.Duration{3 * time.Second, 3 * time.Second, 3 * time.Second, 3 * time.Second, 5 * time.Second}
	if len(slept) != len(want) {
		t.Fatalf("slept %d times, want %d", len(slept), len(want))
	}
	for i := range want {
		if slept[i] != want[i] {
			t.Errorf("sleep %d = %v, want %v", i, slept[i], want[i])
		}
	}
}

func TestRetryBoundedAttempts(t *testing.T) {
	g := New(0, 5, 0, 2)

	attempts := 0
	errTransient := errors.New("navigation timed out")
	err := g.Retry(context.Background(), func() error {
		attempts++
		return errTransient
	})

	if !errors.Is(err, errTransient) {
		t.Errorf("Retry() error = %v, want %v", err, errTransient)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 1 initial + 2 retries", attempts)
	}
}

func TestRetrySucceedsMidway(t *testing.T) {
	g := New(0, 5, 0, 3)

	attempts := 0
	err := g.Retry(context.Background(), func() error {
		attempts++
		if attempts < 2 {
			return errors.New("flaky")
		}
		return nil
	})

	if err != nil {
		t.Errorf("Retry() error = %v, want nil", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestRetryPermanentStopsImmediately(t *testing.T) {
	g := New(0, 5, 0, 5)

	attempts := 0
	errEnv := errors.New("browser unavailable")
	err := g.Retry(context.Background(), func() error {
		attempts++
		return Permanent(errEnv)
	})

	if !errors.Is(err, errEnv) {
		t.Errorf("Retry() error = %v, want %v", err, errEnv)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (no retries for permanent faults)", attempts)
	}
}

func TestRetryHonorsCancellation(t *testing.T) {
	g := New(time.Millisecond, 5, time.Millisecond, 100)

	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := g.Retry(ctx, func() error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return errors.New("still failing")
	})

	if err == nil {
		t.Fatal("Retry() should fail once the context is cancelled")
	}
	if attempts > 3 {
		t.Errorf("attempts = %d, cancellation should stop the retry loop", attempts)
	}
}

func TestPauseAfterReturnsOnCancelledContext(t *testing.T) {
	g := New(time.Hour, 5, time.Hour, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		g.PauseAfter(ctx, 1)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("PauseAfter did not return promptly on a cancelled context")
	}
}
