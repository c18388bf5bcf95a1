package middleware

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
	"github.com/xiebiao/bookshelf/pkg/response"
)

// ConcurrencyLimit 限制同时处理的请求数(保护数据库连接池)
// 排队等待受请求ctx约束,超时或客户端断开返回503
func ConcurrencyLimit(max int64) gin.HandlerFunc {
	if max <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	sem := semaphore.NewWeighted(max)
	return func(c *gin.Context) {
		if err := sem.Acquire(c.Request.Context(), 1); err != nil {
			response.Abort(c, apperrors.ErrServerBusy)
			return
		}
		defer sem.Release(1)
		c.Next()
	}
}
