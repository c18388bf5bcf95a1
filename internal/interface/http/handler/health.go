package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookshelf/internal/infrastructure/health"
)

// HealthHandler 存活与就绪检查
type HealthHandler struct {
	checker *health.Checker
	started time.Time
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(checker *health.Checker) *HealthHandler {
	return &HealthHandler{checker: checker, started: time.Now()}
}

// Live 存活检查,进程能响应即可
// @Summary  存活检查
// @Tags     系统
// @Produce  json
// @Success  200 {object} map[string]interface{}
// @Router   /health [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(h.started).Round(time.Second).String(),
	})
}

// Ready 就绪检查,数据库(和Redis)不可用时返回503
// @Summary  就绪检查
// @Tags     系统
// @Produce  json
// @Success  200 {object} health.Report
// @Failure  503 {object} health.Report
// @Router   /api/status [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	report := h.checker.Check(c.Request.Context())
	status := http.StatusOK
	if !report.Healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, report)
}
