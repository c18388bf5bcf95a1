package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID 请求ID头,客户端传入时沿用
const HeaderRequestID = "X-Request-ID"

// ContextKeyRequestID Context中的请求ID
const ContextKeyRequestID = "request_id"

// maxRequestIDLen 客户端传入的ID过长时重新生成,避免日志被撑大
const maxRequestIDLen = 64

// RequestID 为每个请求分配ID,写入响应头和Context
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderRequestID)
		if rid == "" || len(rid) > maxRequestIDLen {
			rid = uuid.NewString()
		}
		c.Writer.Header().Set(HeaderRequestID, rid)
		c.Set(ContextKeyRequestID, rid)
		c.Next()
	}
}
