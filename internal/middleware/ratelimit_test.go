package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-center-api/internal/service"
)

func TestLoginLimiterAllowsBurstThenThrottles(t *testing.T) {
	limiter := NewLoginLimiter(60, 2, time.Minute, nil)
	clock := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return clock }

	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.False(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.2"), "limits are per IP")

	clock = clock.Add(time.Second)
	assert.True(t, limiter.Allow("10.0.0.1"))
}

func TestLoginLimiterEvictsIdleVisitors(t *testing.T) {
	limiter := NewLoginLimiter(60, 1, time.Minute, nil)
	clock := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return clock }

	require.True(t, limiter.Allow("10.0.0.1"))
	require.True(t, limiter.Allow("10.0.0.2"))
	clock = clock.Add(2 * time.Minute)
	require.True(t, limiter.Allow("10.0.0.2"))

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.Len(t, limiter.visitors, 1)
	_, kept := limiter.visitors["10.0.0.2"]
	assert.True(t, kept)
}

func TestLoginLimiterMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	limiter := NewLoginLimiter(1, 1, time.Minute, metrics)

	r := gin.New()
	r.POST("/login", limiter.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "192.0.2.10:1234"
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send().Code)
	w := send()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "TOO_MANY_REQUESTS")
}
