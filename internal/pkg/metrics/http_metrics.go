// File: internal/pkg/metrics/http_metrics.go
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPMetrics HTTP 性能指标收集器
type HTTPMetrics struct {
	RequestsTotal      *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	RequestsInProgress *prometheus.GaugeVec
}

// DefaultHTTPMetrics 默认的 HTTP 指标实例
var DefaultHTTPMetrics *HTTPMetrics

// HTTPBuckets 请求延迟 buckets，p95 目标 200ms
var HTTPBuckets = []float64{0.01, 0.05, 0.1, 0.2, 0.3, 0.5, 1, 2, 5}

func init() {
	DefaultHTTPMetrics = NewHTTPMetricsWithRegistry(Namespace, GetRegisterer())
}

// NewHTTPMetricsWithRegistry 创建 HTTP 指标收集器
func NewHTTPMetricsWithRegistry(namespace string, registerer prometheus.Registerer) *HTTPMetrics {
	factory := promauto.With(registerer)

	return &HTTPMetrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests by route template, method and status code",
			},
			[]string{"service", "route", "method", "status_code"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route template",
				Buckets:   HTTPBuckets,
			},
			[]string{"service", "route"},
		),
		RequestsInProgress: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_progress",
				Help:      "Current number of HTTP requests being processed",
			},
			[]string{"service"},
		),
	}
}

// RecordRequest 记录一次请求；route 必须是路由模板（如 "/characters/:character_id"）
func (m *HTTPMetrics) RecordRequest(service, route, method string, statusCode int, duration time.Duration) {
	service = normalizeServiceName(service)
	m.RequestsTotal.WithLabelValues(service, NormalizeRoute(route), method, strconv.Itoa(statusCode)).Inc()
	m.RequestDuration.WithLabelValues(service, NormalizeRoute(route)).Observe(duration.Seconds())
}

func (m *HTTPMetrics) IncInProgress(service string) {
	m.RequestsInProgress.WithLabelValues(normalizeServiceName(service)).Inc()
}

func (m *HTTPMetrics) DecInProgress(service string) {
	m.RequestsInProgress.WithLabelValues(normalizeServiceName(service)).Dec()
}

// IsHealthCheckEndpoint 健康检查与指标端点不计入请求指标
func IsHealthCheckEndpoint(path string) bool {
	switch path {
	case "/metrics", "/health", "/healthz", "/readyz", "/livez":
		return true
	}
	return false
}

// NormalizeRoute 未匹配路由统一记为 unknown，防止标签基数爆炸
func NormalizeRoute(route string) string {
	if route == "" {
		return "unknown"
	}
	return route
}
