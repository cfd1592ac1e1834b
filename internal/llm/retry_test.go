package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

var okBatch = MockResponse{Content: json.RawMessage(`{"questions":[]}`)}

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts: attempts,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		Multiplier:  2,
	}
}

func TestRetry_Outcomes(t *testing.T) {
	down := MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("connection refused")}}
	garbled := MockResponse{Err: &ErrInvalidResponse{Content: json.RawMessage(`{"q`), Err: errors.New("not JSON")}}

	tests := []struct {
		name      string
		attempts  int
		script    []MockResponse
		wantErr   bool
		wantCalls int
	}{
		{"first attempt succeeds", 3, []MockResponse{okBatch}, false, 1},
		{"outage then success", 3, []MockResponse{down, okBatch}, false, 2},
		{"outage on every attempt", 3, []MockResponse{down, down, down, okBatch}, true, 3},
		{"rate limit then success", 3, []MockResponse{
			{Err: &ErrRateLimit{RetryAfter: time.Millisecond, Err: errors.New("429")}}, okBatch,
		}, false, 2},
		{"malformed gets one more try", 4, []MockResponse{garbled, okBatch}, false, 2},
		{"malformed twice gives up", 4, []MockResponse{garbled, garbled, okBatch}, true, 2},
		{"truncation is final", 3, []MockResponse{{Err: &ErrMaxTokensExceeded{}}, okBatch}, true, 1},
		{"rejected request is final", 3, []MockResponse{
			{Err: &ErrRequestRejected{Status: 401, Err: errors.New("bad key")}}, okBatch,
		}, true, 1},
		{"zero attempts still calls once", 0, []MockResponse{okBatch}, false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(tt.script...)
			_, err := WithRetry(mock, fastRetry(tt.attempts)).Generate(context.Background(), Request{})
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got := mock.CallCount(); got != tt.wantCalls {
				t.Errorf("calls = %d, want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestRetry_ReturnsLastErrorUnwrapped(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("first")}},
		MockResponse{Err: &ErrRateLimit{Err: errors.New("second")}},
	)
	_, err := WithRetry(mock, fastRetry(2)).Generate(context.Background(), Request{})

	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected the last error, got %T: %v", err, err)
	}
}

func TestRetry_GivesUpBeforeDeadline(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{RetryAfter: time.Minute, Err: errors.New("429")}},
		okBatch,
	)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	start := time.Now()
	_, err := WithRetry(mock, fastRetry(3)).Generate(ctx, Request{})

	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected the rate limit error, got %T: %v", err, err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("should not wait for a retry past the deadline, took %s", elapsed)
	}
	if mock.CallCount() != 1 {
		t.Errorf("calls = %d, want 1", mock.CallCount())
	}
}

func TestRetry_CancelledContext(t *testing.T) {
	mock := NewMockProvider(okBatch)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WithRetry(mock, fastRetry(3)).Generate(ctx, Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if mock.CallCount() != 1 {
		t.Errorf("cancellation should not be retried, calls = %d", mock.CallCount())
	}
}

func TestRetry_Backoff(t *testing.T) {
	r := &RetryProvider{config: RetryConfig{InitialWait: 100 * time.Millisecond, MaxWait: 300 * time.Millisecond, Multiplier: 2}}
	unavailable := &ErrProviderUnavailable{}

	within := func(d, want time.Duration) bool {
		return d >= want*8/10 && d <= want*12/10
	}
	if d := r.backoff(0, unavailable); !within(d, 100*time.Millisecond) {
		t.Errorf("attempt 0 wait = %s", d)
	}
	if d := r.backoff(1, unavailable); !within(d, 200*time.Millisecond) {
		t.Errorf("attempt 1 wait = %s", d)
	}
	if d := r.backoff(5, unavailable); !within(d, 300*time.Millisecond) {
		t.Errorf("wait should be capped, got %s", d)
	}
	if d := r.backoff(0, &ErrRateLimit{RetryAfter: 3 * time.Second}); d != 3*time.Second {
		t.Errorf("retry-after should win, got %s", d)
	}
}

func TestRetry_ModelIDDelegates(t *testing.T) {
	if id := WithRetry(NewMockProvider(), fastRetry(1)).ModelID(); id != "mock" {
		t.Fatalf("ModelID = %q", id)
	}
}
