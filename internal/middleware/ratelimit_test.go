package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRateLimiterAllow(t *testing.T) {
	// Burst of 3, refilling far slower than the test runs.
	rl := NewRateLimiter(0.001, 3)
	defer rl.Stop()

	// First 3 requests should be allowed.
	for i := 0; i < 3; i++ {
		if !rl.allow("test-ip") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	// 4th request should be denied.
	if rl.allow("test-ip") {
		t.Error("4th request should be rate-limited")
	}

	// Different IP should still be allowed.
	if !rl.allow("other-ip") {
		t.Error("different IP should be allowed")
	}
}

func TestRateLimiterRefill(t *testing.T) {
	rl := NewRateLimiter(20, 1) // one token every 50ms
	defer rl.Stop()

	if !rl.allow("test-ip") {
		t.Fatal("first request should be allowed")
	}
	if rl.allow("test-ip") {
		t.Error("should be rate-limited")
	}

	time.Sleep(120 * time.Millisecond)

	if !rl.allow("test-ip") {
		t.Error("should be allowed after the bucket refills")
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	defer rl.Stop()

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// First 2 requests should succeed.
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d: got status %d, want 200", i+1, rr.Code)
		}
	}

	// 3rd request should be rate-limited with a JSON body.
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("got status %d, want 429", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "rate_limit_exceeded") {
		t.Errorf("body %q missing error code", rr.Body.String())
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		xff        string
		xri        string
		remoteAddr string
		want       string
	}{
		{
			name:       "x-forwarded-for single",
			xff:        "10.0.0.1",
			remoteAddr: "192.168.1.1:1234",
			want:       "10.0.0.1",
		},
		{
			name:       "x-forwarded-for multiple",
			xff:        "10.0.0.1, 172.16.0.1, 192.168.1.1",
			remoteAddr: "192.168.1.1:1234",
			want:       "10.0.0.1",
		},
		{
			name:       "x-real-ip",
			xri:        "10.0.0.2",
			remoteAddr: "192.168.1.1:1234",
			want:       "10.0.0.2",
		},
		{
			name:       "remote addr only",
			remoteAddr: "192.168.1.1:1234",
			want:       "192.168.1.1",
		},
		{
			name:       "remote addr no port",
			remoteAddr: "192.168.1.1",
			want:       "192.168.1.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			got := clientIP(req)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(5, 5)
	defer rl.Stop()
	rl.idle = 50 * time.Millisecond

	rl.allow("ip1")
	rl.allow("ip2")

	time.Sleep(100 * time.Millisecond)

	rl.cleanup()

	rl.mu.Lock()
	count := len(rl.clients)
	rl.mu.Unlock()

	if count != 0 {
		t.Errorf("cleanup should remove idle entries, got %d", count)
	}
}

// TestRateLimiterCleanupRetainsRecentEntries verifies that cleanup keeps
// entries that were used recently.
func TestRateLimiterCleanupRetainsRecentEntries(t *testing.T) {
	rl := NewRateLimiter(10, 10)
	defer rl.Stop()
	rl.idle = 200 * time.Millisecond

	rl.allow("ip-old")
	rl.allow("ip-fresh")

	time.Sleep(250 * time.Millisecond)

	rl.allow("ip-fresh")

	rl.cleanup()

	rl.mu.Lock()
	_, oldExists := rl.clients["ip-old"]
	_, freshExists := rl.clients["ip-fresh"]
	count := len(rl.clients)
	rl.mu.Unlock()

	if oldExists {
		t.Error("ip-old should have been cleaned up")
	}
	if !freshExists {
		t.Error("ip-fresh should still exist")
	}
	if count != 1 {
		t.Errorf("expected 1 remaining client, got %d", count)
	}
}

func TestRateLimiterStopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	rl.Stop()
	rl.Stop()
}
