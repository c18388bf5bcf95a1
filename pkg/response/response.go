package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

// ErrorBody 错误响应结构
// 设计说明：
// 1. HTTP状态码由业务错误码推导（apperrors.HTTPStatus）
// 2. Code保留业务错误码，方便客户端细分错误类型
// 3. Details只在参数校验失败时出现
type ErrorBody struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Details []apperrors.FieldError `json:"details,omitempty"`
}

// MessageBody 仅包含提示信息的成功响应
type MessageBody struct {
	Message string `json:"message"`
}

// OK 200响应
func OK(c *gin.Context, body interface{}) {
	c.JSON(http.StatusOK, body)
}

// Created 201响应
func Created(c *gin.Context, body interface{}) {
	c.JSON(http.StatusCreated, body)
}

// Message 200响应，只返回提示信息
func Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, MessageBody{Message: message})
}

// Error 错误响应（自动处理AppError）
// 用法：
//
//	book, err := uc.Execute(ctx, req)
//	if err != nil {
//	    response.Error(c, err)
//	    return
//	}
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)
	status := apperrors.HTTPStatus(appErr.Code)

	// 内部错误记录完整原因，客户端只看到通用提示
	// 503/504是流量控制的结果，提示信息可以原样返回
	if status == http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("code", appErr.Code),
			zap.Error(err),
		)
		_ = c.Error(err)
		c.JSON(status, ErrorBody{Code: appErr.Code, Message: apperrors.ErrInternal.Message})
		return
	}

	c.JSON(status, ErrorBody{
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
	})
}

// Abort 错误响应并终止后续Handler（中间件使用）
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}
