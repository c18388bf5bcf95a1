// Package metrics 基于Prometheus的指标收集
//
// 指标类型：
//   - Counter：只增不减的累计值（请求数、创建的图书数）
//   - Gauge：可增可减的瞬时值（处理中的请求数、熔断器状态）
//   - Histogram：观测值分布（请求耗时、封面大小）
//
// 命名规范：Counter以_total结尾，Histogram以单位结尾（_seconds、_bytes）。
// 标签只使用有限取值（method、route、status、result），不要用book_id、user_id。
//
// 使用示例：
//
//	metrics.InitMetrics()
//	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
//
//	metrics.BooksCreatedTotal.Inc()
//	metrics.IncCounterVec(metrics.CoverUploadsTotal, map[string]string{"result": "success"})
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var initOnce sync.Once

var (
	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数
	// 标签：method、route（路由模板，如/api/books/:id）、status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress prometheus.Gauge

	// 图书业务指标

	// BooksCreatedTotal 发布图书总数
	BooksCreatedTotal prometheus.Counter

	// BooksUpdatedTotal 更新图书总数
	BooksUpdatedTotal prometheus.Counter

	// BooksDeletedTotal 下架图书总数
	BooksDeletedTotal prometheus.Counter

	// ReviewsAddedTotal 评论总数
	ReviewsAddedTotal prometheus.Counter

	// CoverUploadsTotal 封面上传次数
	// 标签：result（success/rejected/failure）
	CoverUploadsTotal *prometheus.CounterVec

	// CoverUploadBytes 封面大小分布
	CoverUploadBytes prometheus.Histogram

	// CoverCleanupFailuresTotal 旧封面清理失败次数（不影响请求结果）
	CoverCleanupFailuresTotal prometheus.Counter

	// 熔断器指标

	// CircuitBreakerState 熔断器状态
	// 0=CLOSED, 1=OPEN, 2=HALF_OPEN
	CircuitBreakerState *prometheus.GaugeVec

	// CircuitBreakerRequests 熔断器请求总数
	// 标签：name、result（success/failure/rejected）
	CircuitBreakerRequests *prometheus.CounterVec

	// Saga指标

	// SagaExecutionsTotal Saga执行总数
	// 标签：saga（名称）、result（success/failure）
	SagaExecutionsTotal *prometheus.CounterVec

	// SagaExecutionDuration Saga执行耗时
	SagaExecutionDuration *prometheus.HistogramVec

	// SagaCompensationsTotal Saga补偿步骤执行总数
	SagaCompensationsTotal *prometheus.CounterVec

	// 消息队列指标

	// MessagesPublishedTotal 消息发布总数
	// 标签：exchange、routing_key、result（success/failure）
	MessagesPublishedTotal *prometheus.CounterVec
)

// InitMetrics 初始化所有指标并注册到默认Registry
// 可以重复调用，只有第一次生效
func InitMetrics() {
	initOnce.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "route"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	BooksCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookshelf_books_created_total",
		Help: "发布图书总数",
	})
	BooksUpdatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookshelf_books_updated_total",
		Help: "更新图书总数",
	})
	BooksDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookshelf_books_deleted_total",
		Help: "下架图书总数",
	})
	ReviewsAddedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookshelf_reviews_added_total",
		Help: "评论总数",
	})

	CoverUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookshelf_cover_uploads_total",
			Help: "封面上传次数",
		},
		[]string{"result"},
	)

	CoverUploadBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "bookshelf_cover_upload_bytes",
		Help: "封面大小（字节）",
		// 64KB ~ 10MB
		Buckets: prometheus.ExponentialBuckets(64<<10, 2, 8),
	})

	CoverCleanupFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookshelf_cover_cleanup_failures_total",
		Help: "旧封面清理失败次数",
	})

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "熔断器请求总数",
		},
		[]string{"name", "result"},
	)

	SagaExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saga_executions_total",
			Help: "Saga执行总数",
		},
		[]string{"saga", "result"},
	)

	SagaExecutionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "saga_execution_duration_seconds",
			Help:    "Saga执行耗时（秒）",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"saga"},
	)

	SagaCompensationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saga_compensations_total",
			Help: "Saga补偿步骤执行总数",
		},
		[]string{"saga", "result"},
	)

	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "消息发布总数",
		},
		[]string{"exchange", "routing_key", "result"},
	)
}

// IncCounterVec 递增CounterVec（带标签）
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	counter.With(labels).Inc()
}

// SetGaugeVec 设置GaugeVec值（带标签）
func SetGaugeVec(gauge *prometheus.GaugeVec, labels map[string]string, value float64) {
	gauge.With(labels).Set(value)
}

// ObserveHistogramVec 记录HistogramVec观测值（带标签）
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	histogram.With(labels).Observe(value)
}
