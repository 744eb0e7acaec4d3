package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is a fixed-window request counter keyed by caller.
type RateLimiter struct {
	visitors map[string]*visitor
	mu       sync.Mutex
	rate     int           // requests per window
	window   time.Duration // time window
	stop     chan struct{}
	once     sync.Once
}

type visitor struct {
	windowStart time.Time
	count       int
}

func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
		stop:     make(chan struct{}),
	}
	go rl.cleanupVisitors()
	return rl
}

// Limit counts requests per authenticated user, falling back to the client
// IP for anonymous requests. It must run after RequireAuth to see the user.
func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := visitorKey(c)
		now := time.Now()

		rl.mu.Lock()
		v, exists := rl.visitors[key]
		if !exists || now.Sub(v.windowStart) > rl.window {
			rl.visitors[key] = &visitor{windowStart: now, count: 1}
			rl.mu.Unlock()
			c.Next()
			return
		}

		if v.count >= rl.rate {
			retryAfter := rl.window - now.Sub(v.windowStart)
			rl.mu.Unlock()
			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded. Please try again later.",
				"retry_after": retryAfter.Seconds(),
			})
			return
		}

		v.count++
		rl.mu.Unlock()
		c.Next()
	}
}

// Stop ends the background cleanup.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) cleanupVisitors() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			for key, v := range rl.visitors {
				if time.Since(v.windowStart) > rl.window*2 {
					delete(rl.visitors, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func visitorKey(c *gin.Context) string {
	if userID := c.GetInt(ContextUserID); userID != 0 {
		return "user:" + strconv.Itoa(userID)
	}
	return "ip:" + c.ClientIP()
}

// CreateRateLimiters returns the limiters used by the API. Applying drives a
// real browser, so it gets a much lower budget than reads.
func CreateRateLimiters() map[string]*RateLimiter {
	return map[string]*RateLimiter{
		"apply":   NewRateLimiter(5, 1*time.Minute),
		"general": NewRateLimiter(60, 1*time.Minute),
	}
}
