package battle

import "rpg-backend/internal/model/gamemodel"

const (
	dpsPerPower          = 2.0
	dpsOutlierFactor     = 5.0
	mobDamageExposure    = 10.0
	receivedDamageFloor  = 0.1
	minMSPerMob          = 3000
	killIntervalVariance = 100.0
)

// SuspicionScore 可疑度评分，范围 [0, 1]，只用于记录和事后审查
func SuspicionScore(report gamemodel.BattleLog, mobs []gamemodel.MonsterConfig) float64 {
	score := 0.0
	stats := report.Stats

	dps := 0.0
	if seconds := float64(stats.DurationMS) / 1000; seconds > 0 {
		dps = float64(stats.TotalDamageDealt) / seconds
	}
	if dps > float64(report.PlayerPower)*dpsPerPower*dpsOutlierFactor {
		score += 0.3
	}

	potential := float64(gamemodel.TotalDamage(mobs)) * mobDamageExposure
	if float64(stats.TotalDamageReceived) < potential*receivedDamageFloor {
		score += 0.2
	}

	if stats.DurationMS < int64(len(mobs)*minMSPerMob) {
		score += 0.3
	}

	if len(report.MobKills) > 2 && killIntervalsUniform(report.MobKills) {
		score += 0.2
	}

	return min(score, 1.0)
}

// killIntervalsUniform 击杀间隔方差过小，疑似脚本操作
func killIntervalsUniform(kills []gamemodel.MobKill) bool {
	intervals := make([]float64, 0, len(kills)-1)
	for i := 1; i < len(kills); i++ {
		intervals = append(intervals, float64(kills[i].Timestamp-kills[i-1].Timestamp))
	}

	mean := 0.0
	for _, v := range intervals {
		mean += v
	}
	mean /= float64(len(intervals))

	variance := 0.0
	for _, v := range intervals {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(intervals))

	return variance < killIntervalVariance
}
