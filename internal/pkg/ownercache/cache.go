// Package ownercache 缓存已确认的角色归属关系，减少每个请求的归属查询。
//
// 只缓存成功结果；角色删除时调用 Forget 剔除。下游服务仍会按用户加载角色，
// 缓存过期前的残留条目不会绕过归属检查。
package ownercache

import (
	"context"
	"sync"
	"time"

	"rpg-backend/internal/pkg/log"
	"rpg-backend/internal/pkg/metrics"
)

const cacheName = "character_owner"

// Owner 实际的归属检查
type Owner interface {
	EnsureOwned(ctx context.Context, userID, characterID string) error
}

type entry struct {
	userID    string
	expiresAt time.Time
}

// Cache 线程安全的归属缓存，按角色 ID 索引（一个角色只有一个所有者）
type Cache struct {
	next    Owner
	ttl     time.Duration
	metrics *metrics.ResourceMetrics
	logger  log.Logger
	clock   func() time.Time
	mu      sync.RWMutex
	store   map[string]entry
}

// New ttl <= 0 时使用 1 分钟
func New(next Owner, ttl time.Duration, m *metrics.ResourceMetrics, logger log.Logger) *Cache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if m == nil {
		m = metrics.DefaultResourceMetrics
	}
	if logger == nil {
		logger = log.GetLogger()
	}
	return &Cache{
		next:    next,
		ttl:     ttl,
		metrics: m,
		logger:  logger.With("component", "owner_cache"),
		clock:   time.Now,
		store:   make(map[string]entry),
	}
}

// EnsureOwned 命中缓存直接返回，否则委托给下游并缓存成功结果
func (c *Cache) EnsureOwned(ctx context.Context, userID, characterID string) error {
	now := c.clock()

	c.mu.RLock()
	e, ok := c.store[characterID]
	c.mu.RUnlock()

	switch {
	case ok && e.userID == userID && now.Before(e.expiresAt):
		c.metrics.RecordCacheLookup(cacheName, "hit", "")
		return nil
	case ok && !now.Before(e.expiresAt):
		c.metrics.RecordCacheLookup(cacheName, "expired", "")
	default:
		c.metrics.RecordCacheLookup(cacheName, "miss", "")
	}

	if err := c.next.EnsureOwned(ctx, userID, characterID); err != nil {
		return err
	}

	c.mu.Lock()
	c.store[characterID] = entry{userID: userID, expiresAt: now.Add(c.ttl)}
	c.mu.Unlock()
	return nil
}

// Forget 剔除角色的缓存条目；nil Cache 上调用无效果
func (c *Cache) Forget(ctx context.Context, characterID, reason string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	_, ok := c.store[characterID]
	delete(c.store, characterID)
	c.mu.Unlock()

	if ok {
		c.metrics.RecordCacheLookup(cacheName, "evicted", "")
		c.logger.DebugContext(ctx, "owner cache evicted", log.String("character_id", characterID), log.String("reason", reason))
	}
}

// Len 当前条目数
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}
