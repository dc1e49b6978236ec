package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/oksasatya/go-attendance-auth/pkg/response"
)

// ipFromCtx extracts the client IP from Gin context, falling back to "unknown"
func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

func normalizePath(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

// KeyFunc builds a rate-limit key from the request
// Example: combine client IP and route path for more granular limiting
type KeyFunc func(c *gin.Context) string

// KeyByIP returns a key function that limits by client IP only
func KeyByIP() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:ip:" + ipFromCtx(c)
	}
}

// KeyByIPAndPath limits by client IP and route. OTP endpoints use it so a
// flood on one does not lock out the others.
func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:path:" + normalizePath(c) + ":ip:" + ipFromCtx(c)
	}
}

// KeyByUserID limits authenticated callers by subject and falls back to IP.
func KeyByUserID() KeyFunc {
	return func(c *gin.Context) string {
		uid, ok := UserID(c)
		if !ok {
			return "rl:user:anon:ip:" + ipFromCtx(c)
		}
		return "rl:user:" + c.GetString(CtxRoleKey) + ":" + strconv.FormatInt(uid, 10)
	}
}

// Lua script: atomic INCR + PEXPIRE on first hit
var incrExpireScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

type AllowFunc func(*gin.Context) bool // return true for bypass limit

// RateLimit with:
// - atomic redis (lua)
// - standard headers (limit/remaining/reset)
// - optional allowlist bypass & method skip
func RateLimit(rdb *redis.Client, max int, window time.Duration, keyFn KeyFunc, allow AllowFunc) gin.HandlerFunc {
	if rdb == nil || max <= 0 || window <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		// optional bypass: health, metrics, internal IP
		if allow != nil && allow(c) {
			c.Next()
			return
		}

		// skip OPTIONS
		if strings.EqualFold(c.Request.Method, http.MethodOptions) {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := keyFn(c)

		// atomic increment + set ttl (ms)
		countI, err := incrExpireScript.Run(ctx, rdb, []string{key}, window.Milliseconds()).Result()
		if err != nil {
			// fail open when redis is unavailable
			c.Next()
			return
		}
		count := toInt(countI)

		// TTL for the reset header
		ttl, _ := rdb.TTL(ctx, key).Result()
		resetSec := 0
		if ttl > 0 {
			resetSec = int(ttl.Seconds())
		}

		remaining := max - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))

		// Exceeded
		if count > max {
			if resetSec > 0 {
				c.Header("Retry-After", strconv.Itoa(resetSec))
			}
			response.Error[any](c, http.StatusTooManyRequests, "rate limit exceeded", response.ErrorBody{Code: "rate_limited"})
			return
		}
		c.Next()
	}
}

func toInt(v interface{}) int {
	switch x := v.(type) {
	case int64:
		return int(x)
	case int:
		return x
	case string:
		i, _ := strconv.Atoi(x)
		return i
	}
	return 0
}

// LocalRateLimit is the in-process counterpart of RateLimit for deployments
// without Redis. Each key gets a token bucket of burst max refilled over window.
func LocalRateLimit(max int, window time.Duration, keyFn KeyFunc, allow AllowFunc) gin.HandlerFunc {
	if max <= 0 || window <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	lim := &keyedLimiter{
		every:    rate.Every(window / time.Duration(max)),
		burst:    max,
		idle:     window * 2,
		limiters: map[string]*limiterEntry{},
	}
	return func(c *gin.Context) {
		if allow != nil && allow(c) {
			c.Next()
			return
		}
		if strings.EqualFold(c.Request.Method, http.MethodOptions) {
			c.Next()
			return
		}
		if !lim.allow(keyFn(c), time.Now()) {
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			response.Error[any](c, http.StatusTooManyRequests, "rate limit exceeded", response.ErrorBody{Code: "rate_limited"})
			return
		}
		c.Next()
	}
}

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

type keyedLimiter struct {
	mu       sync.Mutex
	every    rate.Limit
	burst    int
	idle     time.Duration
	limiters map[string]*limiterEntry
	lastGC   time.Time
}

func (k *keyedLimiter) allow(key string, now time.Time) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	if now.Sub(k.lastGC) > k.idle {
		for id, e := range k.limiters {
			if now.Sub(e.lastSeen) > k.idle {
				delete(k.limiters, id)
			}
		}
		k.lastGC = now
	}
	e, ok := k.limiters[key]
	if !ok {
		e = &limiterEntry{lim: rate.NewLimiter(k.every, k.burst)}
		k.limiters[key] = e
	}
	e.lastSeen = now
	return e.lim.AllowN(now, 1)
}

// Limiter builds a rate limit middleware for one route or group.
type Limiter func(max int, window time.Duration, keyFn KeyFunc) gin.HandlerFunc

// NewLimiter picks the Redis backed limiter when rdb is set and the
// in-process one otherwise. A disabled limiter passes every request.
func NewLimiter(rdb *redis.Client, enabled bool, allow AllowFunc) Limiter {
	if !enabled {
		return func(int, time.Duration, KeyFunc) gin.HandlerFunc {
			return func(c *gin.Context) { c.Next() }
		}
	}
	if rdb != nil {
		return func(max int, window time.Duration, keyFn KeyFunc) gin.HandlerFunc {
			return RateLimit(rdb, max, window, keyFn, allow)
		}
	}
	return func(max int, window time.Duration, keyFn KeyFunc) gin.HandlerFunc {
		return LocalRateLimit(max, window, keyFn, allow)
	}
}
