package nats

import (
	"context"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// HealthChecker 周期性检查 NATS 连接状态，供 /health 端点读取
type HealthChecker struct {
	conn      *nats.Conn
	isHealthy bool
	mutex     sync.RWMutex
	interval  time.Duration
}

// NewHealthChecker 创建健康检查器；conn 为 nil 时始终报告不健康
func NewHealthChecker(conn *nats.Conn, checkInterval time.Duration) *HealthChecker {
	if checkInterval <= 0 {
		checkInterval = 10 * time.Second
	}
	hc := &HealthChecker{conn: conn, interval: checkInterval}
	hc.checkHealth()
	return hc
}

// Start 阻塞运行直到 ctx 结束
func (hc *HealthChecker) Start(ctx context.Context) {
	ticker := time.NewTicker(hc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			hc.checkHealth()
		}
	}
}

// IsHealthy 最近一次检查结果
func (hc *HealthChecker) IsHealthy() bool {
	hc.mutex.RLock()
	defer hc.mutex.RUnlock()
	return hc.isHealthy
}

// Status "up" / "down" / "disabled"
func (hc *HealthChecker) Status() string {
	if hc == nil || hc.conn == nil {
		return "disabled"
	}
	if hc.IsHealthy() {
		return "up"
	}
	return "down"
}

func (hc *HealthChecker) checkHealth() {
	healthy := hc.conn != nil && hc.conn.IsConnected() && !hc.conn.IsClosed()

	hc.mutex.Lock()
	hc.isHealthy = healthy
	hc.mutex.Unlock()
}
