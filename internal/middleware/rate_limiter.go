package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/altWulff/Not-Detail-Poster-sub000/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ── Fixed-window limiter ─────────────────────────────────────────────────────

type window struct {
	count int
	end   time.Time
}

// Limiter counts requests per client IP in fixed windows.
type Limiter struct {
	mu      sync.Mutex
	limit   int
	period  time.Duration
	clients map[string]*window
	now     func() time.Time
}

func NewLimiter(limit int, period time.Duration) *Limiter {
	return &Limiter{limit: limit, period: period, clients: make(map[string]*window), now: time.Now}
}

// Allow records one hit for key and reports whether it is within the limit,
// plus the end of the current window.
func (l *Limiter) Allow(key string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.clients[key]
	if !ok || now.After(w.end) {
		w = &window{end: now.Add(l.period)}
		l.clients[key] = w
	}
	w.count++
	return w.count <= l.limit, w.end
}

// Purge drops expired windows and returns how many were removed.
func (l *Limiter) Purge() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	n := 0
	for k, w := range l.clients {
		if now.After(w.end) {
			delete(l.clients, k)
			n++
		}
	}
	return n
}

// Middleware rejects over-limit clients with 429 and msg.
func (l *Limiter) Middleware(msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, end := l.Allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", end.UTC().Format(http.TimeFormat))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(msg))
			return
		}
		c.Next()
	}
}

// ── Shared limiters ──────────────────────────────────────────────────────────

var (
	loginLimiter = NewLimiter(20, time.Minute)
	purgeOnce    sync.Once
)

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	startPurge(loginLimiter)
	return loginLimiter.Middleware("too many login attempts, try again in a minute")
}

// RateLimiter returns a general-purpose limiter for the whole API.
func RateLimiter(limit int, period time.Duration) gin.HandlerFunc {
	l := NewLimiter(limit, period)
	startPurge(l)
	return l.Middleware("too many requests, try again shortly")
}

var (
	purgeMu  sync.Mutex
	purgeSet []*Limiter
)

const purgeInterval = 5 * time.Minute

// startPurge registers l with the single background purge goroutine.
func startPurge(l *Limiter) {
	purgeMu.Lock()
	purgeSet = append(purgeSet, l)
	purgeMu.Unlock()

	purgeOnce.Do(func() {
		go func() {
			ticker := time.NewTicker(purgeInterval)
			defer ticker.Stop()
			for range ticker.C {
				purgeMu.Lock()
				limiters := append([]*Limiter(nil), purgeSet...)
				purgeMu.Unlock()
				purged := 0
				for _, l := range limiters {
					purged += l.Purge()
				}
				if purged > 0 {
					log.Debug().Int("entries_purged", purged).Msg("rate limiter maps purged")
				}
			}
		}()
	})
}
