package middleware

import (
	"net/http"
	"sync"
	"time"

	"incometracker/config"

	"github.com/gin-gonic/gin"
)

// AttemptLimiter 按 key（客户端 IP）统计滑动窗口内的尝试次数
type AttemptLimiter struct {
	mu        sync.Mutex
	max       int
	window    time.Duration
	hits      map[string][]time.Time
	lastSweep time.Time
	now       func() time.Time
}

func NewAttemptLimiter(maxAttempts int, window time.Duration) *AttemptLimiter {
	return &AttemptLimiter{
		max:    maxAttempts,
		window: window,
		hits:   make(map[string][]time.Time),
		now:    time.Now,
	}
}

// Allow 记录一次尝试，超过上限返回 false（超限的尝试不计数）
func (l *AttemptLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)
	// 每个窗口清理一次其它 key 的过期记录，避免 map 无限增长
	if now.Sub(l.lastSweep) > l.window {
		for k, ts := range l.hits {
			if kept := prune(ts, cutoff); len(kept) == 0 {
				delete(l.hits, k)
			} else {
				l.hits[k] = kept
			}
		}
		l.lastSweep = now
	}

	ts := prune(l.hits[key], cutoff)
	if len(ts) >= l.max {
		l.hits[key] = ts
		return false
	}
	l.hits[key] = append(ts, now)
	return true
}

// Len 当前被跟踪的 key 数量
func (l *AttemptLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.hits)
}

func prune(ts []time.Time, cutoff time.Time) []time.Time {
	kept := ts[:0]
	for _, t := range ts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

// LoginRateLimit 登录/注册接口限流，超限返回 429
func LoginRateLimit(maxAttempts int, window time.Duration) gin.HandlerFunc {
	limiter := NewAttemptLimiter(maxAttempts, window)
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    http.StatusTooManyRequests,
				"message": "Too many attempts, please try again later",
			})
			return
		}
		c.Next()
	}
}

// LoginRateLimitFromConfig 使用配置中的限流参数
func LoginRateLimitFromConfig(cfg *config.SecurityConfig) gin.HandlerFunc {
	return LoginRateLimit(cfg.LoginMaxAttempts, cfg.LoginWindow)
}
