package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"vendapos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// ── Per-company rate limiter ──────────────────────────────────────────────────

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// CompanyRateLimiter keeps one token bucket per company, falling back to the
// client IP for unauthenticated routes.
type CompanyRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rate     rate.Limit
	burst    int
	entryTTL time.Duration
}

func NewCompanyRateLimiter(rps float64, burst int) *CompanyRateLimiter {
	if rps <= 0 {
		rps = 20
	}
	if burst <= 0 {
		burst = int(rps * 2)
	}
	return &CompanyRateLimiter{
		limiters: make(map[string]*limiterEntry),
		rate:     rate.Limit(rps),
		burst:    burst,
		entryTTL: 10 * time.Minute,
	}
}

func (rl *CompanyRateLimiter) get(key string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	e, ok := rl.limiters[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[key] = e
	}
	e.lastSeen = now
	return e.limiter
}

// Middleware must run after JWTAuth on protected groups so the company key
// is available.
func (rl *CompanyRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString(CompanyIDKey)
		if key == "" {
			key = "ip:" + c.ClientIP()
		}
		limiter := rl.get(key, time.Now())
		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.burst))
		if !limiter.Allow() {
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Muitas requisições. Tente novamente em instantes."))
			return
		}
		c.Header("X-RateLimit-Remaining", strconv.Itoa(int(limiter.Tokens())))
		c.Next()
	}
}

// ── Purge goroutine ───────────────────────────────────────────────────────────

// StartCleanup removes buckets unused for entryTTL until done is closed.
func (rl *CompanyRateLimiter) StartCleanup(done <-chan struct{}, every time.Duration) {
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case now := <-ticker.C:
				if n := rl.purge(now); n > 0 {
					log.Debug().Int("purged", n).Msg("rate limiter entries purged")
				}
			}
		}
	}()
}

func (rl *CompanyRateLimiter) purge(now time.Time) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := now.Add(-rl.entryTTL)
	purged := 0
	for k, e := range rl.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(rl.limiters, k)
			purged++
		}
	}
	return purged
}
