package impl

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aarondl/sqlboiler/v4/boil"

	"rpg-backend/internal/entity/game_runtime"
	"rpg-backend/internal/repository/interfaces"
)

type battleSessionRepositoryImpl struct {
	db *sql.DB
}

// NewBattleSessionRepository 创建战斗会话仓储实例
func NewBattleSessionRepository(db *sql.DB) interfaces.BattleSessionRepository {
	return &battleSessionRepositoryImpl{db: db}
}

func (r *battleSessionRepositoryImpl) execer(exec boil.ContextExecutor) boil.ContextExecutor {
	if exec == nil {
		return r.db
	}
	return exec
}

func (r *battleSessionRepositoryImpl) Create(ctx context.Context, exec boil.ContextExecutor, s *game_runtime.BattleSession) error {
	if s == nil {
		return fmt.Errorf("battle session is nil")
	}
	query := `
		INSERT INTO game_runtime.battle_sessions (
			session_token, character_id, chapter, stage, snapshot,
			created_at, expires_at, is_used
		) VALUES ($1,$2,$3,$4,$5,$6,$7,false)
	`
	_, err := r.execer(exec).ExecContext(ctx, query,
		s.SessionToken, s.CharacterID, s.Chapter, s.Stage, []byte(s.Snapshot),
		s.CreatedAt, s.ExpiresAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("会话令牌已存在: %w", interfaces.ErrDuplicate)
		}
		return fmt.Errorf("插入战斗会话失败: %w", err)
	}
	return nil
}

func (r *battleSessionRepositoryImpl) GetByToken(ctx context.Context, exec boil.ContextExecutor, token string) (*game_runtime.BattleSession, error) {
	query := `
		SELECT session_token, character_id, chapter, stage, snapshot,
		       created_at, expires_at, is_used, used_at
		FROM game_runtime.battle_sessions
		WHERE session_token = $1
	`
	var s game_runtime.BattleSession
	var snapshot []byte
	err := r.execer(exec).QueryRowContext(ctx, query, token).Scan(
		&s.SessionToken, &s.CharacterID, &s.Chapter, &s.Stage, &snapshot,
		&s.CreatedAt, &s.ExpiresAt, &s.IsUsed, &s.UsedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询战斗会话失败: %w", err)
	}
	s.Snapshot = snapshot
	return &s, nil
}

func (r *battleSessionRepositoryImpl) MarkUsed(ctx context.Context, exec boil.ContextExecutor, token string, usedAt time.Time) (bool, error) {
	query := `
		UPDATE game_runtime.battle_sessions
		SET is_used = true, used_at = $2
		WHERE session_token = $1 AND is_used = false
	`
	result, err := r.execer(exec).ExecContext(ctx, query, token, usedAt)
	if err != nil {
		return false, fmt.Errorf("标记会话已使用失败: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("读取影响行数失败: %w", err)
	}
	return affected == 1, nil
}

func (r *battleSessionRepositoryImpl) PurgeExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM game_runtime.battle_sessions WHERE expires_at < $1 AND is_used = false`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("清理过期会话失败: %w", err)
	}
	return result.RowsAffected()
}
