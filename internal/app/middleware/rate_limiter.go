package middleware

import (
	"sync"
	"time"

	"dingdong-http-service/internal/error/code"
	"dingdong-http-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// 简单的令牌桶限流器
type TokenBucket struct {
	rate       float64    // 每秒填充的令牌数
	capacity   int        // 桶的容量
	tokens     float64    // 当前令牌数
	lastRefill time.Time  // 上次填充时间
	mu         sync.Mutex // 互斥锁
}

// NewTokenBucket 创建新的令牌桶限流器
func NewTokenBucket(rate float64, capacity int) *TokenBucket {
	return &TokenBucket{
		rate:       rate,
		capacity:   capacity,
		tokens:     float64(capacity),
		lastRefill: time.Now(),
	}
}

// Allow 尝试获取令牌
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.lastRefill = now

	// 填充令牌
	tb.tokens += elapsed * tb.rate
	if tb.tokens > float64(tb.capacity) {
		tb.tokens = float64(tb.capacity)
	}

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}

	return false
}

// 限流器映射
var (
	ipLimiters     = make(map[string]*TokenBucket)
	ipLimitersMu   sync.RWMutex
	pathLimiters   = make(map[string]*TokenBucket)
	pathLimitersMu sync.RWMutex
)

// getIPLimiter 获取或创建指定IP的限流器
func getIPLimiter(ip string, rate float64, burst int) *TokenBucket {
	ipLimitersMu.RLock()
	limiter, exists := ipLimiters[ip]
	ipLimitersMu.RUnlock()
	if exists {
		return limiter
	}

	ipLimitersMu.Lock()
	defer ipLimitersMu.Unlock()
	if limiter, exists = ipLimiters[ip]; exists {
		return limiter
	}
	limiter = NewTokenBucket(rate, burst)
	ipLimiters[ip] = limiter
	return limiter
}

// getPathLimiter 获取或创建指定路径的限流器
func getPathLimiter(path string, rate float64, burst int) *TokenBucket {
	pathLimitersMu.RLock()
	limiter, exists := pathLimiters[path]
	pathLimitersMu.RUnlock()
	if exists {
		return limiter
	}

	pathLimitersMu.Lock()
	defer pathLimitersMu.Unlock()
	if limiter, exists = pathLimiters[path]; exists {
		return limiter
	}
	limiter = NewTokenBucket(rate, burst)
	pathLimiters[path] = limiter
	return limiter
}

// IPRateLimiter 基于客户端IP的限流中间件
func IPRateLimiter(rate float64, burst int) gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := getIPLimiter(c.ClientIP(), rate, burst)
		if !limiter.Allow() {
			response.Fail(c, code.ErrTooManyRequests, nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// PathRateLimiter 基于请求路径的限流中间件
func PathRateLimiter(rate float64, burst int) gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := getPathLimiter(c.FullPath(), rate, burst)
		if !limiter.Allow() {
			response.Fail(c, code.ErrTooManyRequests, nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
