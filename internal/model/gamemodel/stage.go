package gamemodel

import (
	"fmt"
	"strings"
)

// RewardPackage 关卡奖励，生成时即确定
type RewardPackage struct {
	Gold  int64  `json:"gold" example:"645"`
	Gems  int    `json:"gems" example:"1"`
	XP    int64  `json:"xp" example:"95"`
	Items []Item `json:"items"`
}

// StageContent 一次关卡生成的完整结果
type StageContent struct {
	Chapter              int             `json:"chapter"`
	Stage                int             `json:"stage"`
	StageName            string          `json:"stage_name"`
	IsBoss               bool            `json:"is_boss"`
	IsMiniBoss           bool            `json:"is_miniboss"`
	DifficultyMultiplier float64         `json:"difficulty_multiplier"`
	TimeLimitSeconds     int             `json:"time_limit_seconds"`
	Mobs                 []MonsterConfig `json:"mobs"`
	Rewards              RewardPackage   `json:"rewards"`
}

// Kind 关卡类型标签：boss / miniboss / regular
func (s StageContent) Kind() string {
	switch {
	case s.IsBoss:
		return "boss"
	case s.IsMiniBoss:
		return "miniboss"
	default:
		return "regular"
	}
}

// SnapshotVersion 会话快照结构版本
const SnapshotVersion = 1

// SessionSnapshot 写入战斗会话的关卡快照，结算时只读取快照而不重新生成
type SessionSnapshot struct {
	SchemaVersion int          `json:"schema_version"`
	Seed          int64        `json:"seed"`
	Content       StageContent `json:"content"`
}

// NewSessionSnapshot 包装关卡内容
func NewSessionSnapshot(content StageContent, seed int64) SessionSnapshot {
	return SessionSnapshot{SchemaVersion: SnapshotVersion, Seed: seed, Content: content}
}

// StageKey 已通关记录的键，形如 "3-7"
func StageKey(chapter, stage int) string {
	return fmt.Sprintf("%d-%d", chapter, stage)
}

// StageKeyPrefix 某章节所有关卡键的公共前缀
func StageKeyPrefix(chapter int) string {
	return fmt.Sprintf("%d-", chapter)
}

// CountChapterStages 统计指定章节的已通关数
func CountChapterStages(completed []string, chapter int) int {
	prefix := StageKeyPrefix(chapter)
	n := 0
	for _, key := range completed {
		if strings.HasPrefix(key, prefix) {
			n++
		}
	}
	return n
}
