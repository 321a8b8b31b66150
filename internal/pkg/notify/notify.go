package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
)

var (
	ncMu sync.RWMutex
	nc   *nats.Conn
)

// 事件主题
const (
	SubjectStageCompleted   = "game.stage.completed"
	SubjectBattleSuspicious = "game.battle.suspicion"
)

// SetNatsConn 设置全局 NATS 连接（由 main 提供）
func SetNatsConn(conn *nats.Conn) {
	ncMu.Lock()
	defer ncMu.Unlock()
	nc = conn
}

// Conn 当前连接，未设置时为 nil
func Conn() *nats.Conn {
	ncMu.RLock()
	defer ncMu.RUnlock()
	return nc
}

// Publisher 事件发布接口，服务层依赖该接口而非全局连接
type Publisher interface {
	Publish(ctx context.Context, subject string, payload any) error
}

// NatsPublisher 基于全局 NATS 连接的发布器
type NatsPublisher struct{}

// Publish 序列化为 JSON 后发布；没有连接时静默降级
func (NatsPublisher) Publish(ctx context.Context, subject string, payload any) error {
	return PublishEvent(ctx, subject, payload)
}

// PublishEvent 发布 JSON 事件
func PublishEvent(_ context.Context, subject string, payload any) error {
	conn := Conn()
	if conn == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event %s failed: %w", subject, err)
	}
	return conn.Publish(subject, data)
}
