// Package stage 根据章节与关卡生成怪物、难度与奖励
package stage

import (
	"fmt"
	"math/rand"
	"slices"

	"rpg-backend/internal/model/gamemodel"
	"rpg-backend/internal/modules/game/economy"
)

const (
	// BossStage 每章最后一关为首领关
	BossStage = 10
	// MiniBossStage 每章第 5 关为小首领关
	MiniBossStage = 5

	maxRegularMonsters = 10
	miniBossScale      = 0.6
)

// Generator 关卡内容生成器，不持有状态，所有随机性来自调用方传入的 rng
type Generator struct{}

// NewGenerator 创建生成器
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate 生成完整关卡内容，结果写入会话快照后不再重新生成
func (g *Generator) Generate(chapter, stage int, rng *rand.Rand) gamemodel.StageContent {
	difficulty := Difficulty(chapter, stage)
	mobs := g.monsters(chapter, stage, difficulty, rng)

	rewards := Rewards(chapter, stage, mobs)
	rewards.Items = economy.StageDrops(rng, chapter, stage, mobs)

	return gamemodel.StageContent{
		Chapter:              chapter,
		Stage:                stage,
		StageName:            Name(chapter, stage),
		IsBoss:               stage == BossStage,
		IsMiniBoss:           stage == MiniBossStage,
		DifficultyMultiplier: difficulty,
		TimeLimitSeconds:     TimeLimit(stage),
		Mobs:                 mobs,
		Rewards:              rewards,
	}
}

// Difficulty 难度系数
func Difficulty(chapter, stage int) float64 {
	base := 1.0 + float64(chapter-1)*0.5
	bonus := float64(stage-1) * 0.1
	switch stage {
	case BossStage:
		bonus += 0.5
	case MiniBossStage:
		bonus += 0.25
	}
	return base + bonus
}

// MonsterCount 怪物数量
func MonsterCount(chapter, stage int) int {
	switch stage {
	case BossStage:
		return 1
	case MiniBossStage:
		return 2
	default:
		return min(3+chapter/2+stage/3, maxRegularMonsters)
	}
}

// Name 关卡名称
func Name(chapter, stage int) string {
	switch stage {
	case BossStage:
		return fmt.Sprintf("Chapter %d - Final Boss", chapter)
	case MiniBossStage:
		return fmt.Sprintf("Chapter %d-%d (Mini-Boss)", chapter, stage)
	default:
		return fmt.Sprintf("Chapter %d-%d", chapter, stage)
	}
}

// TimeLimit 关卡时限（秒）
func TimeLimit(stage int) int {
	switch stage {
	case BossStage:
		return 300
	case MiniBossStage:
		return 240
	default:
		return 180 + stage*10
	}
}

// Rewards 计算金币、宝石与经验；物品由 economy.StageDrops 另行掷出
func Rewards(chapter, stage int, mobs []gamemodel.MonsterConfig) gamemodel.RewardPackage {
	multiplier := 1.0
	switch stage {
	case BossStage:
		multiplier = 3.0
	case MiniBossStage:
		multiplier = 2.0
	}

	var mobGold, mobXP int
	for _, m := range mobs {
		mobGold += m.GoldReward
		mobXP += m.XPReward
	}

	return gamemodel.RewardPackage{
		Gold:  int64(float64(100*chapter+10*stage+mobGold) * multiplier),
		Gems:  int(float64(chapter+stage/5) * multiplier),
		XP:    int64(float64(50*chapter+5*stage+mobXP) * multiplier),
		Items: []gamemodel.Item{},
	}
}

func (g *Generator) monsters(chapter, stage int, difficulty float64, rng *rand.Rand) []gamemodel.MonsterConfig {
	switch stage {
	case BossStage:
		boss := bossFor(chapter)
		return []gamemodel.MonsterConfig{scale(boss.id, boss, difficulty, chapter)}

	case MiniBossStage:
		mini := bossFor(chapter)
		mini.baseHealth = int(float64(mini.baseHealth) * miniBossScale)
		mini.baseDamage = int(float64(mini.baseDamage) * miniBossScale)

		theme := themeFor(chapter)
		support := monsterTemplates[theme[rng.Intn(len(theme))]]
		return []gamemodel.MonsterConfig{
			scale(mini.id+"_mini", mini, difficulty, chapter),
			scale(support.id, support, difficulty, chapter),
		}

	default:
		theme := themeFor(chapter)
		count := MonsterCount(chapter, stage)
		mobs := make([]gamemodel.MonsterConfig, 0, count)
		for range count {
			t := monsterTemplates[theme[rng.Intn(len(theme))]]
			mobs = append(mobs, scale(t.id, t, difficulty, chapter))
		}
		return mobs
	}
}

func scale(id string, t template, difficulty float64, chapter int) gamemodel.MonsterConfig {
	return gamemodel.MonsterConfig{
		MobID:              id,
		MobName:            t.name,
		MobType:            t.mobType,
		Health:             int(float64(t.baseHealth) * difficulty),
		Damage:             int(float64(t.baseDamage) * difficulty),
		Defense:            int(float64(t.baseDefense) * difficulty),
		MagicResistance:    int(float64(t.magicResistance) * difficulty),
		Speed:              t.speed,
		AttackSpeed:        t.attackSpeed,
		CriticalChance:     t.criticalChance,
		CriticalMultiplier: t.criticalMultiplier,
		DodgeChance:        t.dodgeChance,
		AttackRange:        t.attackRange,
		BehaviorType:       t.behavior,
		AggroRange:         t.aggroRange,
		Color:              t.color,
		SizeScale:          t.sizeScale,
		XPReward:           int(float64(10+5*chapter) * difficulty),
		GoldReward:         int(float64(5+3*chapter) * difficulty),
		DropChance:         economy.BaseDropChance(chapter),
		SpecialAbilities:   slices.Clone(t.abilities),
	}
}
