// Package economy 关卡奖励的经济规则：经验与等级、掉落、奖励落地与战力
package economy

// XPForLevel 到达 level 所需的累计经验
func XPForLevel(level int) int64 {
	l := int64(level)
	return 100 * l * l
}

// LevelFromXP 累计经验对应的等级，最低 1 级
func LevelFromXP(totalXP int64) int {
	level := 1
	for XPForLevel(level+1) <= totalXP {
		level++
	}
	return level
}

// ApplyXP 增加经验并重新计算等级
func ApplyXP(currentXP int64, currentLevel int, gained int64) (newXP int64, newLevel int, leveledUp bool) {
	newXP = currentXP + gained
	newLevel = LevelFromXP(newXP)
	return newXP, newLevel, newLevel > currentLevel
}
