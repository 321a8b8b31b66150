// File: internal/pkg/metrics/error_metrics.go
package metrics

import (
	"strconv"
	"strings"

	"rpg-backend/internal/pkg/xerrors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ErrorMetrics 错误响应指标
type ErrorMetrics struct {
	ErrorsByCode          *prometheus.CounterVec
	ErrorsByCategory      *prometheus.CounterVec
	ErrorResponses        *prometheus.CounterVec
	ErrorResponseDuration *prometheus.HistogramVec
}

// DefaultErrorMetrics 默认的错误指标实例
var DefaultErrorMetrics *ErrorMetrics

func init() {
	DefaultErrorMetrics = NewErrorMetricsWithRegistry(Namespace, GetRegisterer())
}

// NewErrorMetricsWithRegistry 创建错误指标收集器
func NewErrorMetricsWithRegistry(namespace string, registerer prometheus.Registerer) *ErrorMetrics {
	factory := promauto.With(registerer)

	return &ErrorMetrics{
		ErrorsByCode: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total number of errors by error code",
			},
			[]string{"service", "method", "code", "level"},
		),
		ErrorsByCategory: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_by_category_total",
				Help:      "Total number of errors by category (system, authentication, game, ...)",
			},
			[]string{"service", "category", "retryable"},
		),
		ErrorResponses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "error_responses_total",
				Help:      "Total number of error responses by HTTP status code",
			},
			[]string{"service", "status_code"},
		),
		ErrorResponseDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "error_response_duration_seconds",
				Help:      "Time spent rendering error responses",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"service", "code"},
		),
	}
}

// RecordError 记录一次错误响应
func (m *ErrorMetrics) RecordError(appErr *xerrors.AppError, statusCode int, method, service string, duration float64) {
	if m == nil || appErr == nil {
		return
	}

	service = normalizeServiceName(service)
	method = strings.ToUpper(method)
	if method == "" {
		method = "UNKNOWN"
	}
	code := strconv.Itoa(appErr.Code.ToInt())

	m.ErrorsByCode.WithLabelValues(service, method, code, appErr.Level.String()).Inc()
	if appErr.Category != "" {
		m.ErrorsByCategory.WithLabelValues(service, appErr.Category, strconv.FormatBool(appErr.IsRetryable())).Inc()
	}
	m.ErrorResponses.WithLabelValues(service, strconv.Itoa(statusCode)).Inc()
	if duration > 0 {
		m.ErrorResponseDuration.WithLabelValues(service, code).Observe(duration)
	}
}
