package battle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"rpg-backend/internal/model/gamemodel"
)

var sessionCreated = time.UnixMilli(1_700_000_000_000)

func testMobs() []gamemodel.MonsterConfig {
	return []gamemodel.MonsterConfig{
		{MobID: "orc_warrior", Health: 100, Damage: 15},
		{MobID: "goblin_archer", Health: 60, Damage: 20},
		{MobID: "orc_warrior", Health: 100, Damage: 15},
	}
}

func testSession() Session {
	return Session{Chapter: 1, Stage: 1, CreatedAt: sessionCreated, Mobs: testMobs()}
}

// validReport 一份能通过全部检查的上报
func validReport() gamemodel.BattleLog {
	start := sessionCreated.UnixMilli() + 2000
	return gamemodel.BattleLog{
		Version:         1,
		BattleStartTime: start,
		BattleEndTime:   start + 45000,
		Chapter:         1,
		Stage:           1,
		PlayerLevel:     1,
		PlayerPower:     100,
		Stats: gamemodel.BattleStats{
			TotalDamageDealt:    400,
			TotalDamageReceived: 120,
			MobsKilled:          3,
			DurationMS:          45000,
		},
		MobKills: []gamemodel.MobKill{
			{Name: "Orc Warrior", Timestamp: start + 9000},
			{Name: "Goblin Archer", Timestamp: start + 21000},
			{Name: "Orc Warrior", Timestamp: start + 44000},
		},
	}
}

func TestPlausibilityValidator_AcceptsValidReport(t *testing.T) {
	v := NewPlausibilityValidator()
	verdict := v.Validate(validReport(), testSession())
	assert.True(t, verdict.Accepted)
	assert.Empty(t, verdict.Reason)
}

func TestPlausibilityValidator_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *gamemodel.BattleLog)
		reason string
	}{
		{
			name:   "too short",
			mutate: func(r *gamemodel.BattleLog) { r.BattleEndTime = r.BattleStartTime + 4999 },
			reason: "Battle too short (4999ms)",
		},
		{
			name:   "too long",
			mutate: func(r *gamemodel.BattleLog) { r.BattleEndTime = r.BattleStartTime + 600001 },
			reason: "Battle too long (600001ms)",
		},
		{
			name: "started before session",
			mutate: func(r *gamemodel.BattleLog) {
				r.BattleStartTime = sessionCreated.UnixMilli() - 5001
				r.BattleEndTime = r.BattleStartTime + 45000
			},
			reason: "Battle started before session was created",
		},
		{
			name:   "kill mismatch",
			mutate: func(r *gamemodel.BattleLog) { r.Stats.MobsKilled = 2 },
			reason: "Kill count mismatch: expected 3, got 2",
		},
		{
			name:   "damage too low",
			mutate: func(r *gamemodel.BattleLog) { r.Stats.TotalDamageDealt = 129 },
			reason: "Damage dealt too low for mob health",
		},
		{
			name:   "damage too high",
			mutate: func(r *gamemodel.BattleLog) { r.Stats.TotalDamageDealt = 100*50*100 + 1 },
			reason: "Damage dealt suspiciously high",
		},
		{
			name:   "duration mismatch",
			mutate: func(r *gamemodel.BattleLog) { r.Stats.DurationMS = 46001 },
			reason: "Duration mismatch in stats",
		},
	}

	v := NewPlausibilityValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := validReport()
			tt.mutate(&report)
			verdict := v.Validate(report, testSession())
			assert.False(t, verdict.Accepted)
			assert.Equal(t, tt.reason, verdict.Reason)
		})
	}
}

func TestPlausibilityValidator_Boundaries(t *testing.T) {
	v := NewPlausibilityValidator()

	report := validReport()
	report.BattleEndTime = report.BattleStartTime + MinBattleDurationMS
	report.Stats.DurationMS = MinBattleDurationMS
	assert.True(t, v.Validate(report, testSession()).Accepted)

	report = validReport()
	report.BattleStartTime = sessionCreated.UnixMilli() - StartGraceMS
	report.BattleEndTime = report.BattleStartTime + 45000
	assert.True(t, v.Validate(report, testSession()).Accepted)

	report = validReport()
	report.Stats.TotalDamageDealt = 130
	assert.True(t, v.Validate(report, testSession()).Accepted)

	report = validReport()
	report.Stats.DurationMS = 46000
	assert.True(t, v.Validate(report, testSession()).Accepted)
}

func TestPlausibilityValidator_KillMismatchRegardlessOfDamage(t *testing.T) {
	v := NewPlausibilityValidator()
	for _, damage := range []int64{0, 130, 400, 100_000} {
		report := validReport()
		report.Stats.TotalDamageDealt = damage
		report.Stats.MobsKilled = 4
		verdict := v.Validate(report, testSession())
		assert.False(t, verdict.Accepted)
		assert.Equal(t, "Kill count mismatch: expected 3, got 4", verdict.Reason)
	}
}

func TestPlausibilityValidator_Deterministic(t *testing.T) {
	v := NewPlausibilityValidator()
	report := validReport()
	report.Stats.MobsKilled = 1
	first := v.Validate(report, testSession())
	for range 10 {
		assert.Equal(t, first, v.Validate(report, testSession()))
	}
}

func TestPermissiveValidator_AcceptsEverything(t *testing.T) {
	v := NewPermissiveValidator()
	assert.True(t, v.Validate(gamemodel.BattleLog{}, Session{}).Accepted)
	assert.Equal(t, "permissive", v.Name())
	assert.Equal(t, "plausibility", NewPlausibilityValidator().Name())
}
