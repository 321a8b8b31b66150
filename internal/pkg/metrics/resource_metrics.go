// File: internal/pkg/metrics/resource_metrics.go
package metrics

import (
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ResourceMetrics 数据库连接池、Redis 操作与进程内缓存指标
type ResourceMetrics struct {
	DBConnections    *prometheus.GaugeVec
	DBMaxConnections *prometheus.GaugeVec
	DBWaitCount      *prometheus.GaugeVec
	DBWaitDuration   *prometheus.GaugeVec

	RedisOperations        *prometheus.CounterVec
	RedisOperationDuration *prometheus.HistogramVec

	CacheLookups *prometheus.CounterVec
}

// DefaultResourceMetrics 默认的资源指标实例
var DefaultResourceMetrics *ResourceMetrics

// RedisOperationBuckets Redis 操作延迟 buckets（秒）
var RedisOperationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}

func init() {
	DefaultResourceMetrics = NewResourceMetricsWithRegistry(Namespace, GetRegisterer())
}

// NewResourceMetricsWithRegistry 创建资源指标收集器
func NewResourceMetricsWithRegistry(namespace string, registerer prometheus.Registerer) *ResourceMetrics {
	factory := promauto.With(registerer)

	return &ResourceMetrics{
		DBConnections: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "db",
				Name:      "connections",
				Help:      "Current number of database connections by state (open/in_use/idle)",
			},
			[]string{"service", "database", "state"},
		),
		DBMaxConnections: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "db",
				Name:      "max_connections",
				Help:      "Maximum number of open database connections",
			},
			[]string{"service", "database"},
		),
		// sql.DBStats 中的等待计数是累计值，按 gauge 直接覆盖
		DBWaitCount: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "db",
				Name:      "wait_count",
				Help:      "Cumulative number of connections waited for",
			},
			[]string{"service", "database"},
		),
		DBWaitDuration: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "db",
				Name:      "wait_duration_seconds",
				Help:      "Cumulative time blocked waiting for a new connection",
			},
			[]string{"service", "database"},
		),
		RedisOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "redis",
				Name:      "operations_total",
				Help:      "Total number of Redis operations by type and result (success/error)",
			},
			[]string{"operation", "result", "service"},
		),
		RedisOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "redis",
				Name:      "operation_duration_seconds",
				Help:      "Redis operation duration in seconds by operation type",
				Buckets:   RedisOperationBuckets,
			},
			[]string{"operation", "service"},
		),
		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "lookups_total",
				Help:      "In-process cache lookups by cache name and result (hit/miss/expired/evicted)",
			},
			[]string{"cache", "result", "service"},
		),
	}
}

// RecordDBPoolStats 记录 sql.DB 连接池快照
func (m *ResourceMetrics) RecordDBPoolStats(service, database string, stats sql.DBStats) {
	service = normalizeServiceName(service)
	m.DBConnections.WithLabelValues(service, database, "open").Set(float64(stats.OpenConnections))
	m.DBConnections.WithLabelValues(service, database, "in_use").Set(float64(stats.InUse))
	m.DBConnections.WithLabelValues(service, database, "idle").Set(float64(stats.Idle))
	m.DBMaxConnections.WithLabelValues(service, database).Set(float64(stats.MaxOpenConnections))
	m.DBWaitCount.WithLabelValues(service, database).Set(float64(stats.WaitCount))
	m.DBWaitDuration.WithLabelValues(service, database).Set(stats.WaitDuration.Seconds())
}

// RecordRedisOperation 记录 Redis 操作结果与耗时
func (m *ResourceMetrics) RecordRedisOperation(operation string, success bool, duration time.Duration, service string) {
	service = normalizeServiceName(service)
	result := "success"
	if !success {
		result = "error"
	}
	m.RedisOperations.WithLabelValues(operation, result, service).Inc()
	m.RedisOperationDuration.WithLabelValues(operation, service).Observe(duration.Seconds())
}

// RecordCacheLookup 记录进程内缓存的一次查找或剔除
func (m *ResourceMetrics) RecordCacheLookup(cache, result, service string) {
	m.CacheLookups.WithLabelValues(cache, result, normalizeServiceName(service)).Inc()
}
