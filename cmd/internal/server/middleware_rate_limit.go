package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ServiceRateLimitMiddleware ограничивает частоту запросов обработки.
// requests - максимальное количество запросов в секунду
// burst - максимальный размер всплеска запросов
func ServiceRateLimitMiddleware(requests int, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(requests), burst)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}
