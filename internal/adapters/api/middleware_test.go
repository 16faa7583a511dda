package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAuthMiddleware(t *testing.T) {
	middleware := AuthMiddleware("secret-token")
	handler := middleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("Missing Authorization Header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/domains", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rr.Code)
		}
	})

	t.Run("Wrong Scheme", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/domains", nil)
		req.Header.Set("Authorization", "Basic secret-token")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rr.Code)
		}
	})

	t.Run("Wrong Token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/domains", nil)
		req.Header.Set("Authorization", "Bearer not-the-token")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rr.Code)
		}
	})

	t.Run("Valid Token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/domains", nil)
		req.Header.Set("Authorization", "Bearer secret-token")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rr.Code)
		}
	})
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter(1, 2)

	if !rl.Allow("192.0.2.1") {
		t.Error("first request should pass")
	}
	if !rl.Allow("192.0.2.1") {
		t.Error("second request should pass within burst")
	}
	if rl.Allow("192.0.2.1") {
		t.Error("third request should be limited")
	}

	// Other clients have their own bucket.
	if !rl.Allow("192.0.2.2") {
		t.Error("different IP should not be limited")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := newRateLimiter(1, 1)
	handler := RateLimitMiddleware(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/domains", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", rr.Code)
	}
}
