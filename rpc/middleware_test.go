package rpc

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiterBlocksAfterBurst(t *testing.T) {
	limiter := NewRateLimiter(1, 1)
	handler := limiter.Middleware(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/vaults", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", res.Code)
	}

	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be rate limited, got %d", res.Code)
	}
}

func TestRateLimiterSeparatesClients(t *testing.T) {
	limiter := NewRateLimiter(1, 1)
	handler := limiter.Middleware(okHandler())

	first := httptest.NewRequest(http.MethodGet, "/v1/vaults", nil)
	first.RemoteAddr = "10.0.0.1:1234"
	second := httptest.NewRequest(http.MethodGet, "/v1/vaults", nil)
	second.RemoteAddr = "10.0.0.2:1234"

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, first)
	if res.Code != http.StatusOK {
		t.Fatalf("first client: %d", res.Code)
	}
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, second)
	if res.Code != http.StatusOK {
		t.Fatalf("second client should have its own bucket, got %d", res.Code)
	}
}

func TestRateLimiterHonoursForwardedFor(t *testing.T) {
	limiter := NewRateLimiter(1, 1)
	handler := limiter.Middleware(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/vaults", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("first request: %d", res.Code)
	}

	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusTooManyRequests {
		t.Fatalf("expected forwarded client to share a bucket, got %d", res.Code)
	}
}

func TestRequestIDGeneratedAndEchoed(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(requestIDHeader)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if seen == "" {
		t.Fatalf("handler should observe a generated request id")
	}
	if got := res.Header().Get(requestIDHeader); got != seen {
		t.Fatalf("response id %q does not match handler id %q", got, seen)
	}
}

func TestRequestIDPreservesCallerValue(t *testing.T) {
	handler := RequestID(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "caller-id")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if got := res.Header().Get(requestIDHeader); got != "caller-id" {
		t.Fatalf("expected caller id to be preserved, got %q", got)
	}
}
