package gamemodel

import "time"

// CharacterSchemaVersion 角色 JSONB 字段的结构版本
const CharacterSchemaVersion = 1

// CharacterClass 职业
type CharacterClass int

const (
	ClassMage CharacterClass = iota
	ClassWarrior
	ClassArcher
)

// CharacterStats 角色属性
type CharacterStats struct {
	SchemaVersion   int     `json:"schema_version"`
	Strength        int     `json:"strength"`
	Agility         int     `json:"agility"`
	Intelligence    int     `json:"intelligence"`
	Vitality        int     `json:"vitality"`
	Luck            int     `json:"luck"`
	MaxHealth       int     `json:"max_health"`
	MaxMana         int     `json:"max_mana"`
	PhysicalDamage  int     `json:"physical_damage"`
	MagicDamage     int     `json:"magic_damage"`
	Defense         int     `json:"defense"`
	MagicResistance int     `json:"magic_resistance"`
	CriticalChance  float64 `json:"critical_chance"`
	CriticalDamage  float64 `json:"critical_damage"`
	DodgeChance     float64 `json:"dodge_chance"`
	MovementSpeed   int     `json:"movement_speed"`
}

// Inventory 背包
type Inventory struct {
	SchemaVersion int    `json:"schema_version"`
	Items         []Item `json:"items"`
	MaxSlots      int    `json:"max_slots"`
}

// Equipped 已穿戴装备，值为物品 ID
type Equipped struct {
	SchemaVersion int     `json:"schema_version"`
	Weapon        *string `json:"weapon"`
	Helmet        *string `json:"helmet"`
	Chest         *string `json:"chest"`
	Legs          *string `json:"legs"`
	Gloves        *string `json:"gloves"`
	Boots         *string `json:"boots"`
	Ring1         *string `json:"ring1"`
	Ring2         *string `json:"ring2"`
	Amulet        *string `json:"amulet"`
	Bracelet1     *string `json:"bracelet1"`
	Bracelet2     *string `json:"bracelet2"`
	Wings         *string `json:"wings"`
}

// Potions 药水
type Potions struct {
	SchemaVersion int `json:"schema_version"`
	HealthPotions int `json:"health_potions"`
	ManaPotions   int `json:"mana_potions"`
}

// Skills 技能
type Skills struct {
	SchemaVersion int      `json:"schema_version"`
	Unlocked      []string `json:"unlocked"`
	Equipped      []string `json:"equipped"`
	SkillPoints   int      `json:"skill_points"`
}

// ChapterProgression 主线章节进度
type ChapterProgression struct {
	HighestChapter  int      `json:"highest_chapter"`
	HighestStage    int      `json:"highest_stage"`
	CompletedStages []string `json:"completed_stages"`
}

// HasCompleted 是否已通关指定关卡
func (p ChapterProgression) HasCompleted(chapter, stage int) bool {
	key := StageKey(chapter, stage)
	for _, k := range p.CompletedStages {
		if k == key {
			return true
		}
	}
	return false
}

// DungeonProgression 地下城进度
type DungeonProgression struct {
	Unlocked      []string       `json:"unlocked"`
	DailyAttempts map[string]int `json:"daily_attempts"`
}

// Progression 角色进度
type Progression struct {
	SchemaVersion int                `json:"schema_version"`
	Chapters      ChapterProgression `json:"chapters"`
	Dungeons      DungeonProgression `json:"dungeons"`
}

// Shop 商店状态
type Shop struct {
	SchemaVersion  int        `json:"schema_version"`
	DailyRefreshAt *time.Time `json:"daily_refresh_at"`
	PurchasedToday []string   `json:"purchased_today"`
}

// DefaultStats 新角色属性
func DefaultStats() CharacterStats {
	return CharacterStats{
		SchemaVersion:   CharacterSchemaVersion,
		Strength:        10,
		Agility:         10,
		Intelligence:    10,
		Vitality:        10,
		Luck:            5,
		MaxHealth:       100,
		MaxMana:         50,
		PhysicalDamage:  10,
		MagicDamage:     5,
		Defense:         5,
		MagicResistance: 5,
		CriticalChance:  0.05,
		CriticalDamage:  1.5,
		DodgeChance:     0.02,
		MovementSpeed:   100,
	}
}

// DefaultInventory 空背包
func DefaultInventory(maxSlots int) Inventory {
	return Inventory{SchemaVersion: CharacterSchemaVersion, Items: []Item{}, MaxSlots: maxSlots}
}

func DefaultEquipped() Equipped {
	return Equipped{SchemaVersion: CharacterSchemaVersion}
}

func DefaultPotions() Potions {
	return Potions{SchemaVersion: CharacterSchemaVersion, HealthPotions: 5, ManaPotions: 3}
}

func DefaultSkills() Skills {
	return Skills{SchemaVersion: CharacterSchemaVersion, Unlocked: []string{}, Equipped: []string{}}
}

// DefaultProgression 从 1-1 开始
func DefaultProgression() Progression {
	return Progression{
		SchemaVersion: CharacterSchemaVersion,
		Chapters: ChapterProgression{
			HighestChapter:  1,
			HighestStage:    1,
			CompletedStages: []string{},
		},
		Dungeons: DungeonProgression{
			Unlocked:      []string{},
			DailyAttempts: map[string]int{},
		},
	}
}

func DefaultShop() Shop {
	return Shop{SchemaVersion: CharacterSchemaVersion, PurchasedToday: []string{}}
}
