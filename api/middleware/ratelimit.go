package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/allscreenshots/allscreenshots-go/config"
)

// Eviction cadence for idle limiter buckets.
const (
	limiterIdleTTL    = time.Hour
	limiterSweepEvery = 5 * time.Minute
)

// limiterPool hands out one token bucket per caller identity and
// forgets buckets idle longer than limiterIdleTTL, so a demo that sees
// many one-off visitors does not grow without bound.
type limiterPool struct {
	mu      sync.Mutex
	cfg     config.RateLimitConfig
	buckets map[string]*limiterBucket
}

type limiterBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLimiterPool(cfg config.RateLimitConfig) *limiterPool {
	p := &limiterPool{
		cfg:     cfg,
		buckets: make(map[string]*limiterBucket),
	}
	go p.sweep()
	return p
}

func (p *limiterPool) get(identity string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	b, ok := p.buckets[identity]
	if !ok {
		b = &limiterBucket{
			limiter: rate.NewLimiter(rate.Limit(p.cfg.RequestsPerSecond), p.cfg.Burst),
		}
		p.buckets[identity] = b
	}
	b.lastSeen = time.Now()
	return b.limiter
}

func (p *limiterPool) sweep() {
	ticker := time.NewTicker(limiterSweepEvery)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-limiterIdleTTL)
		p.mu.Lock()
		for id, b := range p.buckets {
			if b.lastSeen.Before(cutoff) {
				delete(p.buckets, id)
			}
		}
		p.mu.Unlock()
	}
}

// RateLimit returns per-caller token-bucket rate limiting powered by
// golang.org/x/time/rate. A team sharing an API key shares one budget;
// anonymous demo traffic is bucketed by client IP instead.
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	pool := newLimiterPool(cfg)

	return func(c *gin.Context) {
		if !pool.get(callerIdentity(c)).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "RATE_LIMIT_EXCEEDED",
					"message": "rate limit exceeded, please slow down",
				},
			})
			return
		}

		c.Next()
	}
}

// callerIdentity picks the rate-limit bucket for a request: the
// authenticated API key when the auth middleware resolved one, the
// client IP otherwise.
func callerIdentity(c *gin.Context) string {
	if key := c.GetString(ContextAPIKey); key != "" {
		return key
	}
	return c.ClientIP()
}
