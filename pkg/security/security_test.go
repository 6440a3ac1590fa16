package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestLimiterAllowsBurstThenRejects(t *testing.T) {
	l := NewLimiter(2, time.Hour)
	if !l.Allow("1.1.1.1") || !l.Allow("1.1.1.1") {
		t.Fatal("first two requests should pass")
	}
	if l.Allow("1.1.1.1") {
		t.Fatal("third request should be limited")
	}
	if !l.Allow("2.2.2.2") {
		t.Fatal("other ip should have its own bucket")
	}
}

func TestLimiterSetLimitRaisesBurst(t *testing.T) {
	l := NewLimiter(1, time.Hour)
	l.Allow("ip")
	if l.Allow("ip") {
		t.Fatal("expected limit")
	}
	l.SetLimit(10, time.Hour)
	if l.burst != 10 {
		t.Fatalf("burst = %d, want 10", l.burst)
	}
}

func TestLimiterCleanup(t *testing.T) {
	now := time.Now()
	l := NewLimiter(5, time.Second)
	l.now = func() time.Time { return now }
	l.Allow("old")
	l.now = func() time.Time { return now.Add(2 * time.Minute) }
	l.Allow("fresh")
	if removed := l.Cleanup(); removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"http://ok.test"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://ok.test")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://ok.test" {
		t.Fatalf("allow origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.test")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unexpected allow origin %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/x", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d", w.Code)
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimiter(2, time.Minute))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v", codes)
	}
}
