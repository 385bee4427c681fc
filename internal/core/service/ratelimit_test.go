package service

import (
	"testing"
	"time"
)

func TestLimiterRegistry_Disabled(t *testing.T) {
	r := NewLimiterRegistry(0)
	for i := 0; i < 100; i++ {
		if !r.Allow("1.2.3.4") {
			t.Fatal("disabled registry rejected a request")
		}
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}

func TestLimiterRegistry_Allow(t *testing.T) {
	r := NewLimiterRegistry(2)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	if !r.Allow("a") || !r.Allow("a") {
		t.Fatal("burst of 2 should be allowed")
	}
	if r.Allow("a") {
		t.Error("third request within the same instant should be rejected")
	}
	if !r.Allow("b") {
		t.Error("other clients have their own bucket")
	}

	now = now.Add(time.Second)
	if !r.Allow("a") {
		t.Error("bucket should refill after a second")
	}
}

func TestLimiterRegistry_Prune(t *testing.T) {
	r := NewLimiterRegistry(5)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	r.Allow("old")
	now = now.Add(10 * time.Minute)
	r.Allow("new")

	if n := r.Prune(5 * time.Minute); n != 1 {
		t.Errorf("Prune() removed %d, want 1", n)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}
