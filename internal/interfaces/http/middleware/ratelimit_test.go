package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter(t *testing.T) {
	t.Run("allows the burst then refills", func(t *testing.T) {
		now := time.Date(2025, 12, 31, 22, 0, 0, 0, time.UTC)
		rl := NewRateLimiter(1, 3)
		rl.now = func() time.Time { return now }

		for i := 0; i < 3; i++ {
			assert.True(t, rl.Allow("10.0.0.1"), "request %d should be allowed", i+1)
		}
		assert.False(t, rl.Allow("10.0.0.1"))
		assert.True(t, rl.Allow("10.0.0.2"), "keys are independent")

		now = now.Add(time.Second)
		assert.True(t, rl.Allow("10.0.0.1"))
		assert.False(t, rl.Allow("10.0.0.1"))
	})

	t.Run("forgets idle clients", func(t *testing.T) {
		now := time.Date(2025, 12, 31, 22, 0, 0, 0, time.UTC)
		rl := NewRateLimiter(1, 1)
		rl.now = func() time.Time { return now }

		rl.Allow("a")
		rl.Allow("b")
		assert.Len(t, rl.clients, 2)

		now = now.Add(2 * rl.idleTTL)
		rl.Allow("c")
		assert.Len(t, rl.clients, 1)
	})
}

func TestRateLimitByIP(t *testing.T) {
	rl := NewRateLimiter(0.2, 2)
	router := gin.New()
	router.Use(RateLimitByIP(rl))
	router.POST("/login", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "192.168.1.100:12345"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send().Code)
	assert.Equal(t, http.StatusOK, send().Code)

	w := send()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "5", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")
}
