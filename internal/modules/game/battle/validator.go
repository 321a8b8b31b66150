// Package battle 校验客户端上报的战斗日志
//
// 校验只依据会话快照与上报内容，不访问存储，结果确定。
package battle

import (
	"fmt"
	"time"

	"rpg-backend/internal/model/gamemodel"
)

const (
	MinBattleDurationMS = 5000
	MaxBattleDurationMS = 600000

	// StartGraceMS 允许战斗开始时间早于会话创建时间的容差（客户端时钟偏差）
	StartGraceMS = 5000
	// DurationToleranceMS stats.duration_ms 与起止时间差的容差
	DurationToleranceMS = 1000

	minDamageHealthRatio = 0.5
	maxDamagePerPower    = 50
	maxDamageHeadroom    = 100
)

// Session 校验所需的会话事实
type Session struct {
	Chapter   int
	Stage     int
	CreatedAt time.Time
	Mobs      []gamemodel.MonsterConfig
}

// Verdict 校验结论
type Verdict struct {
	Accepted bool
	Reason   string
}

// Accept 通过
func Accept() Verdict { return Verdict{Accepted: true} }

// Reject 拒绝并附带原因
func Reject(reason string) Verdict { return Verdict{Reason: reason} }

// Validator 战斗日志校验器
type Validator interface {
	Name() string
	Validate(report gamemodel.BattleLog, session Session) Verdict
}

// PlausibilityValidator 生产环境使用的合理性校验
type PlausibilityValidator struct{}

func NewPlausibilityValidator() *PlausibilityValidator {
	return &PlausibilityValidator{}
}

func (v *PlausibilityValidator) Name() string { return "plausibility" }

// Validate 按顺序执行检查，第一个失败即返回
func (v *PlausibilityValidator) Validate(report gamemodel.BattleLog, session Session) Verdict {
	duration := report.DurationWallMS()
	if duration < MinBattleDurationMS {
		return Reject(fmt.Sprintf("Battle too short (%dms)", duration))
	}
	if duration > MaxBattleDurationMS {
		return Reject(fmt.Sprintf("Battle too long (%dms)", duration))
	}

	if report.BattleStartTime < session.CreatedAt.UnixMilli()-StartGraceMS {
		return Reject("Battle started before session was created")
	}

	if expected := len(session.Mobs); report.Stats.MobsKilled != expected {
		return Reject(fmt.Sprintf("Kill count mismatch: expected %d, got %d", expected, report.Stats.MobsKilled))
	}

	dealt := report.Stats.TotalDamageDealt
	totalHealth := gamemodel.TotalHealth(session.Mobs)
	if float64(dealt) < float64(totalHealth)*minDamageHealthRatio {
		return Reject("Damage dealt too low for mob health")
	}
	if dealt > report.PlayerPower*maxDamagePerPower*maxDamageHeadroom {
		return Reject("Damage dealt suspiciously high")
	}

	if abs(report.Stats.DurationMS-duration) > DurationToleranceMS {
		return Reject("Duration mismatch in stats")
	}

	return Accept()
}

// PermissiveValidator 接受所有上报，仅用于客户端开发环境
type PermissiveValidator struct{}

func NewPermissiveValidator() *PermissiveValidator {
	return &PermissiveValidator{}
}

func (v *PermissiveValidator) Name() string { return "permissive" }

func (v *PermissiveValidator) Validate(gamemodel.BattleLog, Session) Verdict {
	return Accept()
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
