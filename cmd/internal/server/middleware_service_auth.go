package server

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ServiceBearerAuthMiddleware создает middleware для аутентификации внутренних
// сервисов по Bearer-токену из заголовка Authorization.
// serviceName используется для идентификации сервиса в контексте запроса.
func ServiceBearerAuthMiddleware(serviceName, apiKey string) gin.HandlerFunc {
	if apiKey == "" {
		panic("service auth enabled but api key is empty - set MS_SERVER_API_KEY")
	}

	secretBytes := []byte(apiKey)

	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "service auth required"})
			return
		}

		token := []byte(h[7:])
		if subtle.ConstantTimeCompare(token, secretBytes) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid service token"})
			return
		}

		c.Set("service", serviceName)
		c.Next()
	}
}
