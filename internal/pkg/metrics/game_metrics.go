// File: internal/pkg/metrics/game_metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 关卡结算结果标签
const (
	CompletionAccepted         = "accepted"
	CompletionAlreadyCompleted = "already_completed"
	CompletionExpired          = "expired"
	CompletionMismatch         = "mismatch"
	CompletionRejected         = "rejected"
)

// GameMetrics 关卡与战斗会话业务指标
type GameMetrics struct {
	SessionsIssued   *prometheus.CounterVec
	IssueThrottled   *prometheus.CounterVec
	Completions      *prometheus.CounterVec
	SuspicionScore   *prometheus.HistogramVec
	BattleDuration   *prometheus.HistogramVec
	ItemsDropped     *prometheus.CounterVec
	LevelUps         *prometheus.CounterVec
	InventoryDropped *prometheus.CounterVec
	SessionsPurged   *prometheus.CounterVec
}

// DefaultGameMetrics 默认的游戏指标实例
var DefaultGameMetrics *GameMetrics

// SuspicionBuckets 可疑度取值为 0.1 的倍数，上限 1.0
var SuspicionBuckets = []float64{0, 0.2, 0.3, 0.5, 0.7, 0.8, 1}

// BattleBuckets 战斗时长 buckets（秒），合法战斗在 5s 到 600s 之间
var BattleBuckets = []float64{5, 15, 30, 60, 120, 180, 300, 600}

func init() {
	DefaultGameMetrics = NewGameMetricsWithRegistry(Namespace, GetRegisterer())
}

// NewGameMetricsWithRegistry 创建游戏指标收集器
func NewGameMetricsWithRegistry(namespace string, registerer prometheus.Registerer) *GameMetrics {
	factory := promauto.With(registerer)

	return &GameMetrics{
		SessionsIssued: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "game",
				Name:      "battle_sessions_issued_total",
				Help:      "Battle sessions issued by stage kind (regular/miniboss/boss)",
			},
			[]string{"kind", "service"},
		),
		IssueThrottled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "game",
				Name:      "battle_session_issue_throttled_total",
				Help:      "Stage config requests rejected by the per-character rate limit",
			},
			[]string{"service"},
		),
		Completions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "game",
				Name:      "stage_completions_total",
				Help:      "Stage completion attempts by result",
			},
			[]string{"result", "service"},
		),
		SuspicionScore: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "game",
				Name:      "battle_suspicion_score",
				Help:      "Advisory suspicion score of reported battles",
				Buckets:   SuspicionBuckets,
			},
			[]string{"service"},
		),
		BattleDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "game",
				Name:      "battle_duration_seconds",
				Help:      "Reported duration of accepted battles",
				Buckets:   BattleBuckets,
			},
			[]string{"service"},
		),
		ItemsDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "game",
				Name:      "items_dropped_total",
				Help:      "Items granted by stage completions, by rarity",
			},
			[]string{"rarity", "service"},
		),
		LevelUps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "game",
				Name:      "level_ups_total",
				Help:      "Character level-ups caused by stage completions",
			},
			[]string{"service"},
		),
		InventoryDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "game",
				Name:      "inventory_overflow_items_total",
				Help:      "Reward items discarded because the inventory was full",
			},
			[]string{"service"},
		),
		SessionsPurged: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "game",
				Name:      "battle_sessions_purged_total",
				Help:      "Expired battle sessions removed by the retention task",
			},
			[]string{"service"},
		),
	}
}

// RecordSessionIssued kind 取值 regular / miniboss / boss
func (m *GameMetrics) RecordSessionIssued(kind, service string) {
	m.SessionsIssued.WithLabelValues(kind, normalizeServiceName(service)).Inc()
}

func (m *GameMetrics) RecordIssueThrottled(service string) {
	m.IssueThrottled.WithLabelValues(normalizeServiceName(service)).Inc()
}

// RecordCompletion 记录一次结算结果
func (m *GameMetrics) RecordCompletion(result, service string) {
	m.Completions.WithLabelValues(result, normalizeServiceName(service)).Inc()
}

func (m *GameMetrics) ObserveSuspicion(score float64, service string) {
	m.SuspicionScore.WithLabelValues(normalizeServiceName(service)).Observe(score)
}

func (m *GameMetrics) ObserveBattleDuration(d time.Duration, service string) {
	m.BattleDuration.WithLabelValues(normalizeServiceName(service)).Observe(d.Seconds())
}

func (m *GameMetrics) RecordItemDropped(rarity, service string) {
	m.ItemsDropped.WithLabelValues(rarity, normalizeServiceName(service)).Inc()
}

func (m *GameMetrics) RecordLevelUp(service string) {
	m.LevelUps.WithLabelValues(normalizeServiceName(service)).Inc()
}

func (m *GameMetrics) RecordInventoryOverflow(count int, service string) {
	if count <= 0 {
		return
	}
	m.InventoryDropped.WithLabelValues(normalizeServiceName(service)).Add(float64(count))
}

func (m *GameMetrics) RecordSessionsPurged(count int64, service string) {
	if count <= 0 {
		return
	}
	m.SessionsPurged.WithLabelValues(normalizeServiceName(service)).Add(float64(count))
}
