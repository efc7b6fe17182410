package server

import (
	"testing"
	"time"
)

func TestRateLimiterFixedWindow(t *testing.T) {
	limiter := newRateLimiter(2, time.Hour)

	if !limiter.Allow("shop-a") {
		t.Fatal("first call should pass")
	}
	if !limiter.Allow("shop-a") {
		t.Fatal("second call should pass")
	}
	if limiter.Allow("shop-a") {
		t.Fatal("third call should be limited")
	}
	if !limiter.Allow("shop-b") {
		t.Fatal("different key should not be limited")
	}
}

func TestRateLimiterRejectsEmptyKey(t *testing.T) {
	limiter := newRateLimiter(1, time.Hour)
	if limiter.Allow("") {
		t.Fatal("empty key should be rejected")
	}
}
