package stage

import "rpg-backend/internal/model/gamemodel"

// template 怪物基础属性，生成时按难度系数缩放
type template struct {
	id                 string
	name               string
	mobType            gamemodel.MonsterType
	baseHealth         int
	baseDamage         int
	baseDefense        int
	magicResistance    int
	speed              float64
	attackSpeed        float64
	criticalChance     float64
	criticalMultiplier float64
	dodgeChance        float64
	attackRange        float64
	behavior           gamemodel.BehaviorType
	aggroRange         float64
	color              [3]float64
	sizeScale          float64
	abilities          []string
}

var monsterTemplates = map[string]template{
	"orc_warrior": {
		id: "orc_warrior", name: "Orc Warrior", mobType: gamemodel.MonsterMelee,
		baseHealth: 100, baseDamage: 15, baseDefense: 8, magicResistance: 3,
		speed: 90, attackSpeed: 1.2, criticalChance: 0.08, criticalMultiplier: 1.5, dodgeChance: 0.05,
		attackRange: 50, behavior: gamemodel.BehaviorAggressive, aggroRange: 150,
		color: [3]float64{0.4, 0.6, 0.3}, sizeScale: 1.0, abilities: []string{"charge"},
	},
	"goblin_archer": {
		id: "goblin_archer", name: "Goblin Archer", mobType: gamemodel.MonsterRanged,
		baseHealth: 60, baseDamage: 20, baseDefense: 4, magicResistance: 2,
		speed: 110, attackSpeed: 1.0, criticalChance: 0.12, criticalMultiplier: 1.8, dodgeChance: 0.10,
		attackRange: 200, behavior: gamemodel.BehaviorDefensive, aggroRange: 200,
		color: [3]float64{0.3, 0.5, 0.2}, sizeScale: 0.7, abilities: []string{"rapid_shot"},
	},
	"dark_mage": {
		id: "dark_mage", name: "Dark Mage", mobType: gamemodel.MonsterMagic,
		baseHealth: 50, baseDamage: 30, baseDefense: 3, magicResistance: 15,
		speed: 70, attackSpeed: 0.8, criticalChance: 0.10, criticalMultiplier: 2.0, dodgeChance: 0.03,
		attackRange: 250, behavior: gamemodel.BehaviorDefensive, aggroRange: 180,
		color: [3]float64{0.3, 0.1, 0.4}, sizeScale: 0.9, abilities: []string{"fireball", "teleport"},
	},
	"skeleton": {
		id: "skeleton", name: "Skeleton", mobType: gamemodel.MonsterMelee,
		baseHealth: 70, baseDamage: 12, baseDefense: 6, magicResistance: 10,
		speed: 85, attackSpeed: 1.4, criticalChance: 0.05, criticalMultiplier: 1.3, dodgeChance: 0.08,
		attackRange: 45, behavior: gamemodel.BehaviorPatrol, aggroRange: 120,
		color: [3]float64{0.9, 0.9, 0.85}, sizeScale: 0.95, abilities: []string{},
	},
	"troll": {
		id: "troll", name: "Troll", mobType: gamemodel.MonsterMelee,
		baseHealth: 200, baseDamage: 25, baseDefense: 15, magicResistance: 5,
		speed: 60, attackSpeed: 0.7, criticalChance: 0.05, criticalMultiplier: 1.4, dodgeChance: 0.02,
		attackRange: 60, behavior: gamemodel.BehaviorAggressive, aggroRange: 100,
		color: [3]float64{0.5, 0.7, 0.5}, sizeScale: 1.5, abilities: []string{"regenerate", "ground_slam"},
	},
}

// allMonsters 未配置主题的章节使用全部怪物，顺序固定
var allMonsters = []string{"orc_warrior", "goblin_archer", "dark_mage", "skeleton", "troll"}

var chapterThemes = map[int][]string{
	1: {"orc_warrior", "goblin_archer"},
	2: {"orc_warrior", "goblin_archer", "skeleton"},
	3: {"skeleton", "dark_mage"},
	4: {"skeleton", "dark_mage", "troll"},
	5: {"dark_mage", "troll"},
}

// bossRoster 按 (chapter-1) % 3 轮换
var bossRoster = []template{
	{
		id: "orc_warlord", name: "Orc Warlord", mobType: gamemodel.MonsterMelee,
		baseHealth: 500, baseDamage: 40, baseDefense: 20, magicResistance: 10,
		speed: 80, attackSpeed: 1.0, criticalChance: 0.15, criticalMultiplier: 2.0, dodgeChance: 0.08,
		attackRange: 70, behavior: gamemodel.BehaviorAggressive, aggroRange: 200,
		color: [3]float64{0.6, 0.2, 0.2}, sizeScale: 1.8, abilities: []string{"war_cry", "cleave", "enrage"},
	},
	{
		id: "lich_king", name: "Lich King", mobType: gamemodel.MonsterMagic,
		baseHealth: 400, baseDamage: 60, baseDefense: 12, magicResistance: 30,
		speed: 50, attackSpeed: 0.6, criticalChance: 0.20, criticalMultiplier: 2.5, dodgeChance: 0.05,
		attackRange: 300, behavior: gamemodel.BehaviorDefensive, aggroRange: 250,
		color: [3]float64{0.2, 0.1, 0.3}, sizeScale: 1.6, abilities: []string{"death_bolt", "summon_skeletons", "soul_drain"},
	},
	{
		id: "dragon", name: "Ancient Dragon", mobType: gamemodel.MonsterMagic,
		baseHealth: 1000, baseDamage: 80, baseDefense: 25, magicResistance: 25,
		speed: 100, attackSpeed: 0.5, criticalChance: 0.15, criticalMultiplier: 2.0, dodgeChance: 0.10,
		attackRange: 350, behavior: gamemodel.BehaviorAggressive, aggroRange: 300,
		color: [3]float64{0.8, 0.3, 0.1}, sizeScale: 3.0, abilities: []string{"fire_breath", "tail_swipe", "fly"},
	},
}

func themeFor(chapter int) []string {
	if theme, ok := chapterThemes[chapter]; ok {
		return theme
	}
	return allMonsters
}

func bossFor(chapter int) template {
	return bossRoster[(chapter-1)%len(bossRoster)]
}
