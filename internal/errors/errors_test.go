package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestIsTransientClassification(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"marked transient", &TransientError{Err: errors.New("x")}, true},
		{"marked permanent", &PermanentError{Err: errors.New("x")}, false},
		{"http 503", &TransientError{Err: errors.New("x"), StatusCode: http.StatusServiceUnavailable}, true},
		{"http 404 permanent", &PermanentError{Err: errors.New("x"), StatusCode: http.StatusNotFound}, false},
		{"connection refused string", errors.New("dial tcp: connection refused"), true},
		{"plain error", errors.New("something odd"), false},
	}
	for _, tc := range cases {
		if got := IsTransient(tc.err); got != tc.want {
			t.Fatalf("%s: IsTransient=%v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestGetErrorTypeDefaultsToPermanent(t *testing.T) {
	if got := GetErrorType(errors.New("mystery")); got != ErrorTypePermanent {
		t.Fatalf("expected permanent, got %v", got)
	}
	if got := GetErrorType(NewDegradedError(errors.New("x"), "")); got != ErrorTypeDegraded {
		t.Fatalf("expected degraded, got %v", got)
	}
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), DefaultRetryConfig(), func(context.Context) error {
		calls++
		return &PermanentError{Err: errors.New("bad request"), StatusCode: http.StatusBadRequest}
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestRetryRecoversFromTransientError(t *testing.T) {
	calls := 0
	config := RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
	err := Retry(context.Background(), config, func(context.Context) error {
		calls++
		if calls < 3 {
			return &TransientError{Err: fmt.Errorf("flaky %d", calls)}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestNoRetryMakesSingleAttempt(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), NoRetry(), func(context.Context) error {
		calls++
		return &TransientError{Err: errors.New("flaky")}
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestCircuitBreakerOpensAndRecovers(t *testing.T) {
	cb := NewCircuitBreaker("test", CircuitBreakerConfig{
		FailureThreshold: 2,
		SuccessThreshold: 1,
		Timeout:          10 * time.Millisecond,
	})

	boom := errors.New("boom")
	for i := 0; i < 2; i++ {
		if err := cb.Allow(); err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
		cb.Mark(boom)
	}
	if cb.State() != StateOpen {
		t.Fatalf("expected open, got %v", cb.State())
	}
	if err := cb.Allow(); err == nil {
		t.Fatal("expected rejection while open")
	} else if !IsDegraded(err) {
		t.Fatalf("expected degraded error, got %v", err)
	}

	time.Sleep(15 * time.Millisecond)
	if err := cb.Allow(); err != nil {
		t.Fatalf("expected half-open to admit request: %v", err)
	}
	cb.Mark(nil)
	if cb.State() != StateClosed {
		t.Fatalf("expected closed after recovery, got %v", cb.State())
	}
}
