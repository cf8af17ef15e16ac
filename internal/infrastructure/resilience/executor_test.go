package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testConfig() Config {
	return Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2.0,
		BreakerEnabled:      false,
	}
}

func TestExecuteRetriesRetryableErrors(t *testing.T) {
	exec := NewExecutor(testConfig())

	calls := 0
	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, func(error) ErrorClassification {
		return ErrorClassification{Retryable: true, RecordFailure: true}
	})

	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestExecuteStopsOnNonRetryableError(t *testing.T) {
	exec := NewExecutor(testConfig())

	calls := 0
	fatal := errors.New("fatal")
	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		calls++
		return fatal
	}, func(error) ErrorClassification {
		return ErrorClassification{Retryable: false, RecordFailure: true}
	})

	if !errors.Is(err, fatal) {
		t.Fatalf("Execute() error = %v, want %v", err, fatal)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestExecuteReturnsLastErrorWhenAttemptsExhausted(t *testing.T) {
	exec := NewExecutor(testConfig())

	transient := errors.New("still failing")
	calls := 0
	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		calls++
		return transient
	}, func(error) ErrorClassification {
		return ErrorClassification{Retryable: true, RecordFailure: true}
	})

	if !errors.Is(err, transient) {
		t.Fatalf("Execute() error = %v, want %v", err, transient)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestExecuteHonorsCanceledContext(t *testing.T) {
	exec := NewExecutor(testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := exec.Execute(ctx, "op", func(context.Context) error {
		t.Fatalf("callback should not run with a canceled context")
		return nil
	}, nil)

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Execute() error = %v, want context.Canceled", err)
	}
}

func TestBreakerOpensAfterFailureRatio(t *testing.T) {
	cfg := testConfig()
	cfg.BreakerEnabled = true
	cfg.BreakerMinRequests = 3
	cfg.BreakerFailureRatio = 0.5
	cfg.BreakerOpenTimeout = time.Minute
	cfg.RetryMaxAttempts = 1
	exec := NewExecutor(cfg)

	classifier := func(error) ErrorClassification {
		return ErrorClassification{Retryable: false, RecordFailure: true}
	}
	failing := func(context.Context) error { return errors.New("down") }

	for i := 0; i < 3; i++ {
		_ = exec.Execute(context.Background(), "ai.generate", failing, classifier)
	}

	err := exec.Execute(context.Background(), "ai.generate", failing, classifier)
	if !IsCircuitOpen(err) {
		t.Fatalf("expected open circuit, got %v", err)
	}
}
