// Package game_runtime 游戏运行时数据表实体（game_runtime schema）
package game_runtime

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/aarondl/null/v8"

	"rpg-backend/internal/model/gamemodel"
)

// BattleSession game_runtime.battle_sessions 表
type BattleSession struct {
	SessionToken string          `boil:"session_token" json:"session_token"`
	CharacterID  string          `boil:"character_id" json:"character_id"`
	Chapter      int             `boil:"chapter" json:"chapter"`
	Stage        int             `boil:"stage" json:"stage"`
	Snapshot     json.RawMessage `boil:"snapshot" json:"snapshot"`
	CreatedAt    time.Time       `boil:"created_at" json:"created_at"`
	ExpiresAt    time.Time       `boil:"expires_at" json:"expires_at"`
	IsUsed       bool            `boil:"is_used" json:"is_used"`
	UsedAt       null.Time       `boil:"used_at" json:"used_at,omitempty"`
}

// NewBattleSession 创建新会话，快照在此刻序列化，之后只读
func NewBattleSession(token, characterID string, snapshot gamemodel.SessionSnapshot, createdAt time.Time, ttl time.Duration) (*BattleSession, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive, got %s", ttl)
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("序列化会话快照失败: %w", err)
	}
	return &BattleSession{
		SessionToken: token,
		CharacterID:  characterID,
		Chapter:      snapshot.Content.Chapter,
		Stage:        snapshot.Content.Stage,
		Snapshot:     raw,
		CreatedAt:    createdAt,
		ExpiresAt:    createdAt.Add(ttl),
	}, nil
}

// IsExpired 过期判断是惰性的，只在结算时检查
func (s *BattleSession) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// DecodeSnapshot 解析关卡快照
func (s *BattleSession) DecodeSnapshot() (gamemodel.SessionSnapshot, error) {
	var snap gamemodel.SessionSnapshot
	if err := json.Unmarshal(s.Snapshot, &snap); err != nil {
		return snap, fmt.Errorf("解析会话快照失败: %w", err)
	}
	return snap, nil
}
