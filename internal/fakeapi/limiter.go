package fakeapi

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Rate limit tiers
const (
	// login and refresh
	limitStrict = rate.Limit(2)
	burstStrict = 5

	limitGeneral = rate.Limit(10)
	burstGeneral = 20

	visitorTTL = 3 * time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter keeps one token bucket per caller and tier.
type rateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
	now       func() time.Time
}

func newRateLimiter() *rateLimiter {
	return &rateLimiter{visitors: make(map[string]*visitor), now: time.Now}
}

func (l *rateLimiter) get(key string, r rate.Limit, b int) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > time.Minute {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > visitorTTL {
				delete(l.visitors, k)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(r, b)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

func (l *rateLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

func rateTier(path string) (rate.Limit, int, string) {
	if strings.HasPrefix(path, "/api/auth/") {
		return limitStrict, burstStrict, "strict"
	}
	return limitGeneral, burstGeneral, "general"
}

// middleware answers 429 once a caller (device id, else client IP) runs
// out of its tier's budget.
func (l *rateLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, burst, tier := rateTier(c.Request.URL.Path)

		identity := "ip:" + c.ClientIP()
		if device := c.GetHeader(deviceHeader); device != "" {
			identity = "device:" + device
		}

		if !l.get(identity+":"+tier, limit, burst).Allow() {
			fail(c, http.StatusTooManyRequests, "Too many requests")
			return
		}
		c.Next()
	}
}
