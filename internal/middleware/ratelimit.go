package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/user/movietable/internal/metrics"
	"github.com/user/movietable/internal/utils"
)

// limiterIdle 多久没有请求的 IP 会被清理
const limiterIdle = 10 * time.Minute

// IPLimiter 按客户端 IP 的令牌桶限流，空闲的 IP 由 go-cache 过期清理
type IPLimiter struct {
	rate  rate.Limit
	burst int

	mu       sync.Mutex
	limiters *cache.Cache
}

// NewIPLimiter 每个 IP 每秒 r 个请求，突发 burst
func NewIPLimiter(r float64, burst int) *IPLimiter {
	return &IPLimiter{
		rate:     rate.Limit(r),
		burst:    burst,
		limiters: cache.New(limiterIdle, limiterIdle),
	}
}

// Allow 判断该 IP 是否还有令牌
func (l *IPLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	var limiter *rate.Limiter
	if v, ok := l.limiters.Get(ip); ok {
		limiter = v.(*rate.Limiter)
	} else {
		limiter = rate.NewLimiter(l.rate, l.burst)
	}
	// 每次访问都顺延过期时间
	l.limiters.SetDefault(ip, limiter)
	return limiter.Allow()
}

// Tracked 当前记录的 IP 数
func (l *IPLimiter) Tracked() int {
	return l.limiters.ItemCount()
}

// RateLimit 超出限制时返回 429
func RateLimit(l *IPLimiter, route string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			metrics.RateLimitExceededTotal.WithLabelValues(route).Inc()
			c.Header("Retry-After", "1")
			utils.TooManyRequests(c)
			return
		}
		c.Next()
	}
}
