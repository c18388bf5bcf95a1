// Package router 组装gin引擎:全局中间件、/api路由、静态封面、监控与文档
package router

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/xiebiao/bookshelf/docs"
	"github.com/xiebiao/bookshelf/internal/infrastructure/config"
	"github.com/xiebiao/bookshelf/internal/interface/http/dto"
	"github.com/xiebiao/bookshelf/internal/interface/http/handler"
	"github.com/xiebiao/bookshelf/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
	"github.com/xiebiao/bookshelf/pkg/response"
)

// Handlers 路由依赖的所有处理器
type Handlers struct {
	Book    *handler.BookHandler
	User    *handler.UserHandler
	Account *handler.AccountHandler
	Health  *handler.HealthHandler
}

// New 创建gin引擎
// 中间件顺序:Recovery → RequestID → Tracing → Metrics → AccessLog → CORS,
// /api下再叠加限速、并发限制、请求体上限和超时
func New(cfg *config.Config, h Handlers, auth *middleware.AuthMiddleware, log *zap.Logger) *gin.Engine {
	dto.RegisterValidator()

	r := gin.New()
	r.Use(
		ginzap.RecoveryWithZap(log, true),
		middleware.RequestID(),
		middleware.Tracing(),
		middleware.Metrics(),
		middleware.AccessLog(log),
		cors.New(corsConfig(cfg.Server.CORSOrigins)),
	)

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, apperrors.ErrNotFound)
	})

	r.GET("/health", h.Health.Live)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.Server.Mode != gin.ReleaseMode {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// 本地存储时由本服务直接提供封面文件
	if cfg.Storage.Driver == "local" {
		r.Static(cfg.Storage.URLPrefix, cfg.Storage.LocalRoot)
	}

	api := r.Group("/api",
		middleware.RateLimitPerIP(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst),
		middleware.ConcurrencyLimit(cfg.Server.MaxConcurrent),
		middleware.MaxBodyBytes(cfg.Server.MaxBodyBytes),
		middleware.Timeout(cfg.Server.RequestTimeout),
	)
	requireAuth := auth.RequireAuth()

	api.GET("/status", h.Health.Ready)
	api.GET("/categories", h.Book.Categories)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.User.Register)
		authGroup.POST("/login", h.User.Login)
		authGroup.POST("/refresh", h.User.Refresh)
		authGroup.POST("/logout", requireAuth, h.User.Logout)
		authGroup.GET("/me", requireAuth, h.User.Me)
	}

	users := api.Group("/users", requireAuth)
	{
		users.PUT("/profile", h.Account.UpdateProfile)
		users.DELETE("/:id", auth.RequireAdmin(), h.Account.DeleteUser)
	}

	books := api.Group("/books")
	{
		books.GET("", h.Book.ListBooks)
		books.GET("/:id", h.Book.GetBook)
		books.POST("", requireAuth, h.Book.AddBook)
		books.PUT("/:id", requireAuth, h.Book.UpdateBook)
		books.DELETE("/:id", requireAuth, h.Book.DeleteBook)
		books.POST("/:id/reviews", requireAuth, h.Book.AddReview)
	}

	return r
}

// corsConfig 配置了"*"时放行所有来源(此时不能携带凭证)
func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{middleware.HeaderRequestID, middleware.HeaderTraceID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range origins {
		if strings.TrimSpace(o) == "*" {
			c.AllowAllOrigins = true
			c.AllowCredentials = false
			return c
		}
	}
	c.AllowOrigins = origins
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		c.AllowCredentials = false
	}
	return c
}
