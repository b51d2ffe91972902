package server

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDKey = "request_id"

// RequestIDMiddleware присваивает каждому запросу идентификатор:
// берет X-Request-ID клиента либо генерирует новый. Идентификатор
// кладется в контекст и возвращается в заголовке ответа.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Header("X-Request-ID", rid)
		c.Next()
	}
}

// requestID достает идентификатор запроса из контекста.
func requestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
