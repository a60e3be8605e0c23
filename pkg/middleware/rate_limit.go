package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/docstore/pkg/metrics"
	"golang.org/x/time/rate"
)

// ClientIDHeader lets callers behind a shared address identify themselves to
// the rate limiter.
const ClientIDHeader = "X-Client-ID"

// clientKey prefers the X-Client-ID header and falls back to the client IP.
func clientKey(c *gin.Context) string {
	if id := c.GetHeader(ClientIDHeader); id != "" {
		return "client:" + id
	}
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}

// limiterIdleTTL is how long a client's bucket survives without requests.
const limiterIdleTTL = 10 * time.Minute

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// limiterStore holds one token bucket per client key. Buckets idle for
// longer than idle are swept, at most once per idle period.
type limiterStore struct {
	rps       float64
	burst     int
	idle      time.Duration
	now       func() time.Time
	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

func newLimiterStore(rps float64, burst int, idle time.Duration) *limiterStore {
	return &limiterStore{
		rps:       rps,
		burst:     burst,
		idle:      idle,
		now:       time.Now,
		buckets:   make(map[string]*bucket),
		lastSweep: time.Now(),
	}
}

func (s *limiterStore) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if now.Sub(s.lastSweep) >= s.idle {
		for k, b := range s.buckets {
			if now.Sub(b.lastSeen) >= s.idle {
				delete(s.buckets, k)
			}
		}
		s.lastSweep = now
	}
	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(rate.Limit(s.rps), s.burst)}
		s.buckets[key] = b
	}
	b.lastSeen = now
	return b.lim
}

func (s *limiterStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

// RateLimitMiddleware enforces an in-process token bucket per client.
// rps = allowed events per second, burst = maximum tokens in bucket.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	store := newLimiterStore(rps, burst, limiterIdleTTL)
	return func(c *gin.Context) {
		if !store.get(clientKey(c)).Allow() {
			c.Header("Retry-After", "1")
			metrics.RateLimitRejected.WithLabelValues("memory").Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("memory").Inc()
		c.Next()
	}
}
