package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiter_AllowUpToLimit(t *testing.T) {
	l := New(3, time.Minute)
	defer l.Stop()

	for i := 0; i < 3; i++ {
		if !l.Allow("k") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if l.Allow("k") {
		t.Error("4th attempt should be blocked")
	}
	if l.Remaining("k") != 0 {
		t.Errorf("Remaining = %d, want 0", l.Remaining("k"))
	}
	if !l.Allow("other") {
		t.Error("other keys are counted separately")
	}
}

func TestLimiter_Reset(t *testing.T) {
	l := New(1, time.Minute)
	defer l.Stop()

	l.Allow("k")
	if l.Allow("k") {
		t.Fatal("expected block before reset")
	}
	l.Reset("k")
	if !l.Allow("k") {
		t.Error("expected allow after reset")
	}
}

func TestLimiter_WindowExpires(t *testing.T) {
	l := New(1, 10*time.Millisecond)
	defer l.Stop()

	l.Allow("k")
	time.Sleep(20 * time.Millisecond)
	if !l.Allow("k") {
		t.Error("expected allow after the window expired")
	}
}

func TestLimiter_Sweep(t *testing.T) {
	l := New(1, time.Minute)
	defer l.Stop()

	l.Allow("k")
	l.sweep(time.Now().Add(2 * time.Minute))
	if l.Remaining("k") != 1 {
		t.Error("expected expired entry to be swept")
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/login", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	if got := ClientIP(req); got != "10.0.0.1" {
		t.Errorf("RemoteAddr: got %q", got)
	}

	req.Header.Set("X-Real-IP", "10.0.0.2")
	if got := ClientIP(req); got != "10.0.0.2" {
		t.Errorf("X-Real-IP: got %q", got)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.3")
	if got := ClientIP(req); got != "203.0.113.9" {
		t.Errorf("X-Forwarded-For: got %q", got)
	}
}

func TestLoginLimiter_PerUser(t *testing.T) {
	ll := NewLoginLimiterWithConfig(100, time.Minute, 2, time.Minute)
	defer ll.Stop()

	req := httptest.NewRequest("POST", "/login", nil)
	for i := 0; i < 2; i++ {
		if ok, _ := ll.Check(req, "Alice"); !ok {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	ok, reason := ll.Check(req, " alice ")
	if ok || reason == "" {
		t.Error("expected username limit to apply case-insensitively")
	}

	ll.ResetUser("ALICE")
	if ok, _ := ll.Check(req, "alice"); !ok {
		t.Error("expected allow after ResetUser")
	}
}

func TestLoginLimiter_PerIP(t *testing.T) {
	ll := NewLoginLimiterWithConfig(1, time.Minute, 100, time.Minute)
	defer ll.Stop()

	req := httptest.NewRequest("POST", "/login", nil)
	if ok, _ := ll.Check(req, "a"); !ok {
		t.Fatal("first attempt should be allowed")
	}
	if ok, _ := ll.Check(req, "b"); ok {
		t.Error("expected IP limit to block a second username")
	}
}
