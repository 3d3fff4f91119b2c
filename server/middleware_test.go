package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vineetdaniels2108/RxNormSIGProject/config"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("allowed"))
	})
}

func TestRealIPMiddleware(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.1:4321"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	var seenAddr string
	handler := RealIPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenAddr = r.RemoteAddr
		w.WriteHeader(http.StatusOK)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seenAddr != "203.0.113.7" {
		t.Errorf("Expected RemoteAddr 203.0.113.7, got %q", seenAddr)
	}
}

func TestRealIPMiddlewareWithoutHeader(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.1:4321"

	var seenAddr string
	handler := RealIPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenAddr = r.RemoteAddr
		w.WriteHeader(http.StatusOK)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seenAddr != "10.0.0.1:4321" {
		t.Errorf("Expected RemoteAddr unchanged, got %q", seenAddr)
	}
}

func TestBlockDirectAccessLocalhostIPv4(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "127.0.0.1:12345"

	rr := httptest.NewRecorder()
	BlockDirectAccessMiddleware(okHandler()).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status OK for localhost, got %d", rr.Code)
	}
}

func TestBlockDirectAccessLocalhostIPv6(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "[::1]:12345"

	rr := httptest.NewRecorder()
	BlockDirectAccessMiddleware(okHandler()).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status OK for localhost IPv6, got %d", rr.Code)
	}
}

func TestBlockDirectAccessDirectIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.168.1.1:12345"

	rr := httptest.NewRecorder()
	BlockDirectAccessMiddleware(okHandler()).ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("Expected status Forbidden for direct access, got %d", rr.Code)
	}
}

func TestBlockDirectAccessWithProxyHeaders(t *testing.T) {
	for _, header := range []string{"X-Forwarded-For", "X-Real-IP"} {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set(header, "203.0.113.7")

		rr := httptest.NewRecorder()
		BlockDirectAccessMiddleware(okHandler()).ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("Expected status OK when proxied via %s, got %d", header, rr.Code)
		}
	}
}

func TestRequestSizeMiddlewareBodyTooLarge(t *testing.T) {
	cfg := &config.Config{MaxRequestBody: 100, MaxHeaderSize: 8192}

	req := httptest.NewRequest("POST", "/", strings.NewReader("body"))
	req.Header.Set("Content-Length", "5000")

	rr := httptest.NewRecorder()
	RequestSizeMiddleware(cfg)(okHandler()).ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected status 413, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected JSON error response, got Content-Type %q", ct)
	}
}

func TestRequestSizeMiddlewareHeadersTooLarge(t *testing.T) {
	cfg := &config.Config{MaxRequestBody: 1048576, MaxHeaderSize: 50}

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Padding", strings.Repeat("a", 200))

	rr := httptest.NewRecorder()
	RequestSizeMiddleware(cfg)(okHandler()).ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestHeaderFieldsTooLarge {
		t.Errorf("Expected status 431, got %d", rr.Code)
	}
}

func TestRequestSizeMiddlewareAllowsNormalRequest(t *testing.T) {
	cfg := &config.Config{MaxRequestBody: 1048576, MaxHeaderSize: 8192}

	req := httptest.NewRequest("GET", "/", nil)

	rr := httptest.NewRecorder()
	RequestSizeMiddleware(cfg)(okHandler()).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status OK, got %d", rr.Code)
	}
}

func TestGetTokenCost(t *testing.T) {
	tests := []struct {
		path string
		want int64
	}{
		{"/database", 200},
		{"/database/3", 20},
		{"/medication/aspirin", 100},
		{"/medication/id/197361", 20},
		{"/stats", 5},
		{"/health", 5},
		{"/metrics", 5},
		{"/unknown", 20},
	}

	for _, tt := range tests {
		req := httptest.NewRequest("GET", tt.path, nil)
		if got := getTokenCost(req); got != tt.want {
			t.Errorf("getTokenCost(%q) = %d, want %d", tt.path, got, tt.want)
		}
	}
}

func TestRateLimiterCreatesBucketPerClient(t *testing.T) {
	rl := NewRateLimiter()

	a := rl.getBucket("198.51.100.1")
	b := rl.getBucket("198.51.100.2")
	if a == b {
		t.Error("Expected distinct buckets for distinct clients")
	}

	if again := rl.getBucket("198.51.100.1"); again != a {
		t.Error("Expected the same bucket on repeated access")
	}
}

func TestRateLimitHandlerSetsHeaders(t *testing.T) {
	req := httptest.NewRequest("GET", "/health", nil)
	req.RemoteAddr = "198.51.100.50:1234"

	rr := httptest.NewRecorder()
	RateLimitHandler(okHandler()).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status OK, got %d", rr.Code)
	}
	if rr.Header().Get("X-RateLimit-Limit") != "1000" {
		t.Error("Expected X-RateLimit-Limit header to be set")
	}
	if rr.Header().Get("X-RateLimit-Remaining") == "" {
		t.Error("Expected X-RateLimit-Remaining header to be set")
	}
}

func TestRateLimitHandlerRejectsExhaustedClient(t *testing.T) {
	req := httptest.NewRequest("GET", "/database", nil)
	req.RemoteAddr = "198.51.100.99:1234"

	// The full table dump costs 200 tokens; a fresh bucket holds 1000
	var lastCode int
	for i := 0; i < 6; i++ {
		rr := httptest.NewRecorder()
		RateLimitHandler(okHandler()).ServeHTTP(rr, req)
		lastCode = rr.Code
	}

	if lastCode != http.StatusTooManyRequests {
		t.Errorf("Expected status 429 after exhausting the bucket, got %d", lastCode)
	}
}
