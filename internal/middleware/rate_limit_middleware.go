package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/domain/repository"
)

// RateLimitConfig содержит настройки rate limiting
type RateLimitConfig struct {
	// MaxRequests - максимальное количество запросов за Window
	MaxRequests int
	// Window - временное окно для подсчёта запросов
	Window time.Duration
	// KeyPrefix - префикс для ключей в Redis
	KeyPrefix string
}

// RateLimiter ограничивает частоту запросов счётчиками с окном в кеше
type RateLimiter struct {
	counters repository.CacheRepository
	logger   *zap.Logger
}

// NewRateLimiter создает новый RateLimiter
func NewRateLimiter(counters repository.CacheRepository, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{counters: counters, logger: logger.Named("RateLimiter")}
}

// LimitByUser ограничивает запросы пользователя к маршруту. Применяется после RequireAuth.
// Без user_id в контексте ключом служит IP.
func (rl *RateLimiter) LimitByUser(cfg RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := "ip:" + c.ClientIP()
		if userID, ok := c.Get(ContextUserID); ok {
			subject = fmt.Sprintf("user:%v", userID)
		}
		path := c.FullPath() // шаблон маршрута, например "/api/attempts"
		if path == "" {
			path = c.Request.URL.Path
		}
		key := fmt.Sprintf("%s:%s:%s:%s", cfg.KeyPrefix, subject, c.Request.Method, path)

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		count, err := rl.counters.IncrementWindow(ctx, key, cfg.Window)
		if err != nil {
			// fail-open: недоступный Redis не должен останавливать запись попыток
			rl.logger.Warn("rate limit counter failed, allowing request", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		remaining := cfg.MaxRequests - int(count)
		if remaining < 0 {
			remaining = 0
		}
		retryAfter := int(cfg.Window.Seconds())

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", cfg.MaxRequests))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

		if int(count) > cfg.MaxRequests {
			rl.logger.Info("rate limit exceeded",
				zap.String("subject", subject), zap.String("path", path),
				zap.Int64("count", count), zap.Int("limit", cfg.MaxRequests))

			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Too many requests. Please try again later.",
				"error_type":  "rate_limited",
				"retry_after": retryAfter,
			})
			return
		}

		c.Next()
	}
}
