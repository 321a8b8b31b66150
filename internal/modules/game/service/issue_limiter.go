package service

import (
	"context"
	"sync"
	"time"

	"rpg-backend/internal/pkg/log"
)

// IssueLimiter 限制单个角色领取关卡配置（签发会话）的频率
type IssueLimiter interface {
	Allow(ctx context.Context, characterID string) bool
}

// windowCounter 由 redis.Client 实现
type windowCounter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

const issueLimitKeyPrefix = "rpg:stage_config:"

// NewIssueLimiter limit<=0 时不限流；counter 为 nil 时只使用进程内计数
func NewIssueLimiter(counter windowCounter, limit int, window time.Duration, logger log.Logger) IssueLimiter {
	if limit <= 0 {
		return unlimited{}
	}
	if logger == nil {
		logger = log.GetLogger()
	}
	mem := newMemoryLimiter(limit, window)
	if counter == nil {
		return mem
	}
	return &redisLimiter{
		counter:  counter,
		limit:    int64(limit),
		window:   window,
		fallback: mem,
		logger:   logger.With("component", "issue_limiter"),
	}
}

type unlimited struct{}

func (unlimited) Allow(context.Context, string) bool { return true }

type redisLimiter struct {
	counter  windowCounter
	limit    int64
	window   time.Duration
	fallback *memoryLimiter
	logger   log.Logger
}

// Allow Redis 不可用时退化为进程内计数
func (l *redisLimiter) Allow(ctx context.Context, characterID string) bool {
	n, err := l.counter.IncrWindow(ctx, issueLimitKeyPrefix+characterID, l.window)
	if err != nil {
		l.logger.WarnContext(ctx, "Redis 限流计数失败，使用本地计数",
			log.String("character_id", characterID),
			log.Any("error", err))
		return l.fallback.Allow(ctx, characterID)
	}
	return n <= l.limit
}

type windowEntry struct {
	count     int
	expiresAt time.Time
}

// memoryLimiter 进程内固定窗口计数
type memoryLimiter struct {
	limit  int
	window time.Duration
	clock  func() time.Time
	mu     sync.Mutex
	store  map[string]*windowEntry
}

func newMemoryLimiter(limit int, window time.Duration) *memoryLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &memoryLimiter{
		limit:  limit,
		window: window,
		clock:  time.Now,
		store:  make(map[string]*windowEntry),
	}
}

func (l *memoryLimiter) Allow(_ context.Context, characterID string) bool {
	now := l.clock()

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.store[characterID]
	if !ok || now.After(e.expiresAt) {
		l.sweep(now)
		l.store[characterID] = &windowEntry{count: 1, expiresAt: now.Add(l.window)}
		return true
	}
	e.count++
	return e.count <= l.limit
}

// sweep 清理过期窗口，调用方持有锁
func (l *memoryLimiter) sweep(now time.Time) {
	for key, e := range l.store {
		if now.After(e.expiresAt) {
			delete(l.store, key)
		}
	}
}
