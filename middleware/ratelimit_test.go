package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newLimitedRouter(rl *RateLimiter, userID int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	if userID != 0 {
		router.Use(func(c *gin.Context) {
			c.Set(ContextUserID, userID)
			c.Next()
		})
	}
	router.Use(rl.Limit())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "ok"})
	})
	return router
}

func doGet(router *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	req.RemoteAddr = remoteAddr
	router.ServeHTTP(w, req)
	return w
}

func TestNewRateLimiter(t *testing.T) {
	rl := NewRateLimiter(5, 1*time.Minute)
	defer rl.Stop()

	assert.NotNil(t, rl)
	assert.Equal(t, 5, rl.rate)
	assert.Equal(t, 1*time.Minute, rl.window)
	assert.NotNil(t, rl.visitors)
}

func TestRateLimiter_MultipleRequestsWithinLimit(t *testing.T) {
	rl := NewRateLimiter(5, 1*time.Minute)
	defer rl.Stop()
	router := newLimitedRouter(rl, 0)

	for i := 0; i < 5; i++ {
		w := doGet(router, "127.0.0.1:12345")
		assert.Equal(t, http.StatusOK, w.Code, "Request %d should succeed", i+1)
	}
}

func TestRateLimiter_ExceedLimit(t *testing.T) {
	rl := NewRateLimiter(3, 1*time.Minute)
	defer rl.Stop()
	router := newLimitedRouter(rl, 0)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doGet(router, "127.0.0.1:12345").Code)
	}

	w := doGet(router, "127.0.0.1:12345")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Rate limit exceeded")
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRateLimiter_DifferentIPs(t *testing.T) {
	rl := NewRateLimiter(2, 1*time.Minute)
	defer rl.Stop()
	router := newLimitedRouter(rl, 0)

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, doGet(router, "192.168.1.1:12345").Code)
	}
	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, doGet(router, "192.168.1.2:12345").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, doGet(router, "192.168.1.1:12345").Code)
}

func TestRateLimiter_KeysByUserWhenAuthenticated(t *testing.T) {
	rl := NewRateLimiter(2, 1*time.Minute)
	defer rl.Stop()
	router := newLimitedRouter(rl, 42)

	// The same user is limited across addresses.
	assert.Equal(t, http.StatusOK, doGet(router, "10.0.0.1:1").Code)
	assert.Equal(t, http.StatusOK, doGet(router, "10.0.0.2:1").Code)
	assert.Equal(t, http.StatusTooManyRequests, doGet(router, "10.0.0.3:1").Code)
}

func TestRateLimiter_WindowReset(t *testing.T) {
	rl := NewRateLimiter(2, 100*time.Millisecond)
	defer rl.Stop()
	router := newLimitedRouter(rl, 0)

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, doGet(router, "127.0.0.1:12345").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, doGet(router, "127.0.0.1:12345").Code)

	time.Sleep(150 * time.Millisecond)

	assert.Equal(t, http.StatusOK, doGet(router, "127.0.0.1:12345").Code)
}

func TestRateLimiter_StopTwice(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	assert.NotPanics(t, func() {
		rl.Stop()
		rl.Stop()
	})
}

func TestCreateRateLimiters(t *testing.T) {
	limiters := CreateRateLimiters()
	defer func() {
		for _, rl := range limiters {
			rl.Stop()
		}
	}()

	assert.Equal(t, 5, limiters["apply"].rate)
	assert.Equal(t, 60, limiters["general"].rate)
}
