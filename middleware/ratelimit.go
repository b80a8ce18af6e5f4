package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// visitor pairs one client's limiter with its last activity so idle
// entries can be evicted.
type visitor struct {
	lim  *rate.Limiter
	seen time.Time
}

// RateLimit enforces a per-client token bucket keyed by IP. rps is the
// sustained rate, burst the bucket size. A single pet client never
// comes close; this guards against a stuck retry loop.
func RateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	var (
		mu       sync.Mutex
		visitors = map[string]*visitor{}
	)

	go func() {
		for range time.Tick(10 * time.Minute) {
			cutoff := time.Now().Add(-30 * time.Minute)
			mu.Lock()
			for ip, v := range visitors {
				if v.seen.Before(cutoff) {
					delete(visitors, ip)
				}
			}
			mu.Unlock()
		}
	}()

	return func(c *gin.Context) {
		ip := c.ClientIP()
		mu.Lock()
		v, ok := visitors[ip]
		if !ok {
			v = &visitor{lim: rate.NewLimiter(rps, burst)}
			visitors[ip] = v
		}
		v.seen = time.Now()
		mu.Unlock()

		if !v.lim.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
