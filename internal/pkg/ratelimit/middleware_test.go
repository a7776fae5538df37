package ratelimit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw)
	r.POST("/reports", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})
	return r
}

func post(r *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/reports", nil)
	req.RemoteAddr = remoteAddr
	r.ServeHTTP(w, req)
	return w
}

func TestMiddleware_RateLimitExceeded(t *testing.T) {
	r := newRouter(Middleware(New(2, time.Minute)))

	require.Equal(t, http.StatusCreated, post(r, "10.0.0.1:1234").Code)
	w := post(r, "10.0.0.1:1234")
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	require.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = post(r, "10.0.0.1:1234")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.NotEmpty(t, w.Header().Get("Retry-After"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "RATE_LIMITED", body["code"])
	require.Equal(t, "Rate limit exceeded. Try again later.", body["error"])

	// other clients are unaffected
	require.Equal(t, http.StatusCreated, post(r, "10.0.0.2:1234").Code)
}

func TestKeyedMiddleware_UsesKey(t *testing.T) {
	r := newRouter(KeyedMiddleware(New(1, time.Minute), func(c *gin.Context) string {
		return c.GetHeader("X-Device")
	}))

	send := func(device string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/reports", nil)
		req.Header.Set("X-Device", device)
		r.ServeHTTP(w, req)
		return w.Code
	}

	require.Equal(t, http.StatusCreated, send("a"))
	require.Equal(t, http.StatusTooManyRequests, send("a"))
	require.Equal(t, http.StatusCreated, send("b"))
}

func TestRateLimiter_WindowSlides(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	rl := New(2, time.Minute)
	rl.now = func() time.Time { return now }

	require.True(t, rl.Allow("ip"))
	now = now.Add(30 * time.Second)
	require.True(t, rl.Allow("ip"))
	require.False(t, rl.Allow("ip"))
	require.Equal(t, now.Add(30*time.Second), rl.ResetTime("ip"))

	now = now.Add(31 * time.Second)
	require.Equal(t, 1, rl.Remaining("ip"))
	require.True(t, rl.Allow("ip"))

	now = now.Add(2 * time.Minute)
	rl.Cleanup()
	require.Empty(t, rl.requests)

	require.True(t, rl.Allow("ip"))
	rl.Reset("ip")
	require.Equal(t, 2, rl.Remaining("ip"))
}
