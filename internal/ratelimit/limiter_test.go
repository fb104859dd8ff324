package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLimiterAllow(t *testing.T) {
	l := NewLimiter(0.001, 2)

	if !l.Allow() || !l.Allow() {
		t.Fatal("expected the first two requests to fit in the burst")
	}
	if l.Allow() {
		t.Fatal("expected the third request to be rejected")
	}

	allowed, rejected := l.GetStats()
	if allowed != 2 || rejected != 1 {
		t.Errorf("stats = %d/%d, want 2/1", allowed, rejected)
	}
}

func TestLimiterGetLimit(t *testing.T) {
	l := NewLimiter(0.5, 4)

	rps, burst := l.GetLimit()
	if rps != 0.5 || burst != 4 {
		t.Errorf("GetLimit() = %v/%d, want 0.5/4", rps, burst)
	}
}

func TestLimiterMiddleware(t *testing.T) {
	l := NewLimiter(0.001, 1)

	var rejected int
	handler := l.Middleware(func(*http.Request) { rejected++ })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/states", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/states", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}
	if rejected != 1 {
		t.Errorf("onReject called %d times, want 1", rejected)
	}

	allowed, rejectedCount := l.GetStats()
	if allowed != 1 || rejectedCount != 1 {
		t.Errorf("stats = %d/%d, want 1/1", allowed, rejectedCount)
	}
}
