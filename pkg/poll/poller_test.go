package poll

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWaitReturnsOnTerminalStatus(t *testing.T) {
	p := Poller{Interval: time.Millisecond, MaxAttempts: 30}

	attempts := 0
	status, err := p.Wait(context.Background(), func(context.Context) (string, bool, error) {
		attempts++
		if attempts < 3 {
			return "processing", false, nil
		}
		return "completed", true, nil
	})
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if status != "completed" {
		t.Fatalf("unexpected status %q", status)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestWaitExhaustsAttemptBudget(t *testing.T) {
	p := Poller{Interval: time.Millisecond, MaxAttempts: 5}

	attempts := 0
	status, err := p.Wait(context.Background(), func(context.Context) (string, bool, error) {
		attempts++
		return "processing", false, nil
	})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if attempts != 5 {
		t.Fatalf("expected exactly 5 attempts, got %d", attempts)
	}
	if status != "processing" {
		t.Fatalf("last observed status must be reported, got %q", status)
	}
}

func TestWaitAbortsOnFetchError(t *testing.T) {
	p := Poller{Interval: time.Millisecond, MaxAttempts: 5}

	boom := errors.New("connection refused")
	attempts := 0
	_, err := p.Wait(context.Background(), func(context.Context) (string, bool, error) {
		attempts++
		return "", false, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("transport errors must abort immediately, got %d attempts", attempts)
	}
}

func TestWaitHonorsContextCancellation(t *testing.T) {
	p := Poller{Interval: time.Hour, MaxAttempts: 30}
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := p.Wait(ctx, func(context.Context) (string, bool, error) {
		return "processing", false, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}

func TestDefaultContract(t *testing.T) {
	p := New()
	if p.Interval != 10*time.Second {
		t.Fatalf("expected 10s interval, got %v", p.Interval)
	}
	if p.MaxAttempts != 30 {
		t.Fatalf("expected 30 attempts, got %d", p.MaxAttempts)
	}
}
