package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"diploma360/middlewares"
)

// RPS=1, Burst=1: the immediate second request gets 429 with Retry-After.
func TestRateLimiter_429(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := middlewares.NewRateLimiter(middlewares.LimiterConfig{
		RPS: 1, Burst: 1, IdleTTL: time.Minute,
	})

	s := gin.New()
	s.Use(rl.Middleware(func(c *gin.Context) string { return "k" }))
	s.GET("/x", func(c *gin.Context) { c.String(200, "ok") })

	w1 := httptest.NewRecorder()
	s.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w1.Code != http.StatusOK {
		t.Fatalf("first request: want 200, got %d", w1.Code)
	}

	w2 := httptest.NewRecorder()
	s.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w2.Code != http.StatusTooManyRequests {
		t.Fatalf("want 429, got %d", w2.Code)
	}
	if w2.Header().Get("Retry-After") == "" {
		t.Fatalf("missing Retry-After header")
	}
}

// Separate keys get separate buckets.
func TestRateLimiter_PerKeyBuckets(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := middlewares.NewRateLimiter(middlewares.LimiterConfig{
		RPS: 1, Burst: 1, IdleTTL: time.Minute,
	})

	s := gin.New()
	s.Use(rl.Middleware(func(c *gin.Context) string { return c.Query("k") }))
	s.GET("/x", func(c *gin.Context) { c.String(200, "ok") })

	for _, k := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x?k="+k, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("key %q: want 200, got %d", k, w.Code)
		}
	}
}
