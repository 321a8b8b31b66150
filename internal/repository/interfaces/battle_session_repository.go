package interfaces

import (
	"context"
	"time"

	"github.com/aarondl/sqlboiler/v4/boil"

	"rpg-backend/internal/entity/game_runtime"
)

// BattleSessionRepository 战斗会话仓储
type BattleSessionRepository interface {
	// Create 插入新会话，令牌冲突返回 ErrDuplicate
	Create(ctx context.Context, exec boil.ContextExecutor, session *game_runtime.BattleSession) error

	// GetByToken 查询会话，不存在返回 ErrNotFound
	GetByToken(ctx context.Context, exec boil.ContextExecutor, token string) (*game_runtime.BattleSession, error)

	// MarkUsed 条件更新 is_used=false -> true，返回是否由本次调用完成翻转
	MarkUsed(ctx context.Context, exec boil.ContextExecutor, token string, usedAt time.Time) (bool, error)

	// PurgeExpiredBefore 删除 expires_at 早于 cutoff 且未使用的会话；已使用的会话保留，重复提交仍返回 already_completed
	PurgeExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
