package battle

import (
	"context"

	"rpg-backend/internal/pkg/log"
	"rpg-backend/internal/pkg/metrics"
	"rpg-backend/internal/pkg/notify"
)

// SuspiciousThreshold 达到该分数时额外发布 NATS 事件
const SuspiciousThreshold = 0.5

// SuspicionEvent 可疑度事件
type SuspicionEvent struct {
	CharacterID  string  `json:"character_id"`
	SessionToken string  `json:"session_token"`
	Chapter      int     `json:"chapter"`
	Stage        int     `json:"stage"`
	Score        float64 `json:"score"`
	Accepted     bool    `json:"accepted"`
	Reason       string  `json:"reason,omitempty"`
}

// SuspicionReporter 输出可疑度评分，实现不得阻塞结算流程
type SuspicionReporter interface {
	Report(ctx context.Context, event SuspicionEvent)
}

type suspicionReporter struct {
	logger    log.Logger
	metrics   *metrics.GameMetrics
	publisher notify.Publisher
}

// NewSuspicionReporter 日志 + 直方图 + NATS；publisher 为 nil 时只记录本地
func NewSuspicionReporter(logger log.Logger, m *metrics.GameMetrics, publisher notify.Publisher) SuspicionReporter {
	if logger == nil {
		logger = log.GetLogger()
	}
	if m == nil {
		m = metrics.DefaultGameMetrics
	}
	return &suspicionReporter{logger: logger, metrics: m, publisher: publisher}
}

func (r *suspicionReporter) Report(ctx context.Context, event SuspicionEvent) {
	r.metrics.ObserveSuspicion(event.Score, "")

	log.LogGameEvent(ctx, r.logger, "battle_suspicion", event.CharacterID,
		log.Int("chapter", event.Chapter),
		log.Int("stage", event.Stage),
		log.Float64("score", event.Score),
		log.Bool("accepted", event.Accepted),
	)

	if r.publisher == nil || event.Score < SuspiciousThreshold {
		return
	}
	if err := r.publisher.Publish(ctx, notify.SubjectBattleSuspicious, event); err != nil {
		r.logger.WarnContext(ctx, "发布可疑度事件失败", log.Any("error", err))
	}
}
