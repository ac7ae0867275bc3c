package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/readtrack/readtrack-backend/internal/response"
)

// RateLimiter caps request bursts per client IP with a token bucket.
// Buckets refill continuously, so a client that drained its burst gets
// single slots back as time passes instead of waiting out a full window.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	burst   float64
	perSec  float64
}

type bucket struct {
	level   float64
	touched time.Time
}

// NewRateLimiter allows rate requests per interval from each IP.
func NewRateLimiter(rate int, interval time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		burst:   float64(rate),
		perSec:  float64(rate) / interval.Seconds(),
	}
	go rl.janitor()
	return rl
}

// Middleware rejects clients that drained their bucket with 429.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP()) {
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) allow(ip string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[ip]
	if !ok {
		rl.buckets[ip] = &bucket{level: rl.burst - 1, touched: now}
		return true
	}

	b.level += now.Sub(b.touched).Seconds() * rl.perSec
	if b.level > rl.burst {
		b.level = rl.burst
	}
	b.touched = now

	if b.level < 1 {
		return false
	}
	b.level--
	return true
}

// janitor drops buckets idle long enough to have refilled completely.
func (rl *RateLimiter) janitor() {
	for range time.Tick(2 * time.Minute) {
		rl.mu.Lock()
		for ip, b := range rl.buckets {
			if time.Since(b.touched) > 5*time.Minute {
				delete(rl.buckets, ip)
			}
		}
		rl.mu.Unlock()
	}
}
