package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Limiter decides whether the client identified by key may make another request
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// LocalLimiter is an in-process token bucket per client
type LocalLimiter struct {
	clients map[string]*clientLimit
	limit   rate.Limit
	burst   int
	window  time.Duration
	mu      sync.Mutex
	stop    chan struct{}
	once    sync.Once
}

type clientLimit struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLocalLimiter allows requests per window per client, refilling evenly across the window.
// A non-positive requests value disables limiting.
func NewLocalLimiter(requests int, window time.Duration) *LocalLimiter {
	rl := &LocalLimiter{
		clients: make(map[string]*clientLimit),
		limit:   rate.Inf,
		burst:   requests,
		window:  window,
		stop:    make(chan struct{}),
	}
	if requests > 0 && window > 0 {
		rl.limit = rate.Every(window / time.Duration(requests))
	} else {
		rl.window = time.Minute
	}

	go rl.cleanup()

	return rl
}

func (rl *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	client, ok := rl.clients[key]
	if !ok {
		client = &clientLimit{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = client
	}
	client.lastSeen = time.Now()
	return client.limiter.Allow(), nil
}

// Close stops the cleanup goroutine
func (rl *LocalLimiter) Close() {
	rl.once.Do(func() { close(rl.stop) })
}

// cleanup drops clients idle for longer than a window; their bucket would be full again anyway
func (rl *LocalLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			cutoff := time.Now().Add(-rl.window)
			for key, client := range rl.clients {
				if client.lastSeen.Before(cutoff) {
					delete(rl.clients, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// RedisLimiter is a fixed window counter shared by every instance using the same redis
type RedisLimiter struct {
	client   redis.Cmdable
	prefix   string
	requests int
	window   time.Duration
	now      func() time.Time
}

// NewRedisLimiter creates a limiter allowing requests per window per client
func NewRedisLimiter(client redis.Cmdable, requests int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client:   client,
		prefix:   "piazza:ratelimit:",
		requests: requests,
		window:   window,
		now:      time.Now,
	}
}

func (rl *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	slot := rl.now().UnixNano() / int64(rl.window)
	redisKey := rl.prefix + key + ":" + strconv.FormatInt(slot, 10)

	var incr *redis.IntCmd
	_, err := rl.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.Expire(ctx, redisKey, rl.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("rate limit counter: %w", err)
	}
	return incr.Val() <= int64(rl.requests), nil
}

// RateLimiter applies a Limiter to every request
type RateLimiter struct {
	limiter Limiter
	logger  *zap.Logger
}

// NewRateLimiter wraps limiter as middleware
func NewRateLimiter(limiter Limiter, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{limiter: limiter, logger: logger}
}

// Middleware returns a rate limiting middleware.
// Authenticated requests are keyed by user id, anonymous ones by client IP.
// A failing limiter backend lets the request through.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := "ip:" + getClientIP(r)
		if id := GetIdentity(r); id != nil {
			key = "user:" + id.ID
		}

		allowed, err := rl.limiter.Allow(r.Context(), key)
		if err != nil {
			rl.logger.Warn("rate limiter unavailable", zap.String("key", key), zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"RateLimitExceeded","message":"Rate limit exceeded. Please try again later."}` + "\n"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// getClientIP extracts the client IP from the request
func getClientIP(r *http.Request) string {
	// first hop of X-Forwarded-For when behind a proxy
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
