// Package gamemodel 定义关卡、战斗会话与角色进度的值类型，JSON 标签即客户端协议字段
package gamemodel

// MonsterType 怪物类型
type MonsterType string

const (
	MonsterMelee  MonsterType = "melee"
	MonsterRanged MonsterType = "ranged"
	MonsterMagic  MonsterType = "magic"
)

// BehaviorType 怪物 AI 行为
type BehaviorType string

const (
	BehaviorAggressive BehaviorType = "aggressive"
	BehaviorDefensive  BehaviorType = "defensive"
	BehaviorPatrol     BehaviorType = "patrol"
)

// MonsterConfig 生成后的怪物配置，写入会话快照后不再修改
type MonsterConfig struct {
	MobID              string       `json:"mob_id" example:"orc_warrior"`
	MobName            string       `json:"mob_name" example:"Orc Warrior"`
	MobType            MonsterType  `json:"mob_type" example:"melee"`
	Health             int          `json:"health" example:"100"`
	Damage             int          `json:"damage" example:"15"`
	Defense            int          `json:"defense" example:"8"`
	MagicResistance    int          `json:"magic_resistance" example:"3"`
	Speed              float64      `json:"speed" example:"90"`
	AttackSpeed        float64      `json:"attack_speed" example:"1.2"`
	CriticalChance     float64      `json:"critical_chance" example:"0.08"`
	CriticalMultiplier float64      `json:"critical_multiplier" example:"1.5"`
	DodgeChance        float64      `json:"dodge_chance" example:"0.05"`
	AttackRange        float64      `json:"attack_range" example:"50"`
	BehaviorType       BehaviorType `json:"behavior_type" example:"aggressive"`
	AggroRange         float64      `json:"aggro_range" example:"150"`
	Color              [3]float64   `json:"color"`
	SizeScale          float64      `json:"size_scale" example:"1"`
	XPReward           int          `json:"xp_reward" example:"15"`
	GoldReward         int          `json:"gold_reward" example:"8"`
	DropChance         float64      `json:"drop_chance" example:"0.06"`
	SpecialAbilities   []string     `json:"special_abilities"`
}

// TotalHealth 所有怪物生命值之和
func TotalHealth(mobs []MonsterConfig) int {
	total := 0
	for _, m := range mobs {
		total += m.Health
	}
	return total
}

// TotalDamage 所有怪物攻击力之和
func TotalDamage(mobs []MonsterConfig) int {
	total := 0
	for _, m := range mobs {
		total += m.Damage
	}
	return total
}
