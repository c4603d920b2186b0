package middleware

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestCircuitBreakerOpensAndRecovers(t *testing.T) {
	cb := NewCircuitBreaker("test", 2, 20*time.Millisecond)
	ctx := context.Background()
	fail := func() error { return fmt.Errorf("boom") }
	ok := func() error { return nil }

	_ = cb.Call(ctx, fail)
	_ = cb.Call(ctx, fail)
	if cb.GetState() != StateOpen {
		t.Fatalf("expected open after 2 failures, got %v", cb.GetState())
	}

	if err := cb.Call(ctx, ok); err != ErrBreakerOpen {
		t.Fatalf("expected ErrBreakerOpen, got %v", err)
	}

	// 过了重置窗口进入半开，成功后闭合
	time.Sleep(30 * time.Millisecond)
	if err := cb.Call(ctx, ok); err != nil {
		t.Fatalf("expected half-open call to pass, got %v", err)
	}
	if cb.GetState() != StateClosed {
		t.Fatalf("expected closed after half-open success, got %v", cb.GetState())
	}
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker("test", 1, 10*time.Millisecond)
	ctx := context.Background()
	fail := func() error { return fmt.Errorf("boom") }

	_ = cb.Call(ctx, fail)
	time.Sleep(20 * time.Millisecond)
	_ = cb.Call(ctx, fail)

	if cb.GetState() != StateOpen {
		t.Fatalf("expected reopened after half-open failure, got %v", cb.GetState())
	}
}

func TestSlidingWindowLimit(t *testing.T) {
	sw := NewSlidingWindow(time.Minute, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if !sw.Allow(ctx) {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	if sw.Allow(ctx) {
		t.Fatalf("4th request in window should be rejected")
	}
}

func TestTokenBucketRefill(t *testing.T) {
	tb := NewTokenBucket(1, 1000)
	ctx := context.Background()

	if !tb.Allow(ctx) {
		t.Fatalf("first request should pass")
	}
	if tb.Allow(ctx) {
		t.Fatalf("bucket should be empty")
	}
	time.Sleep(5 * time.Millisecond)
	if !tb.Allow(ctx) {
		t.Fatalf("expected refill after wait")
	}
}
