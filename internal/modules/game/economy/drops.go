package economy

import (
	"math"
	"math/rand"

	"github.com/google/uuid"

	"rpg-backend/internal/model/gamemodel"
)

// BaseDropChance 普通怪物的掉落概率
func BaseDropChance(chapter int) float64 {
	return 0.05 + float64(chapter)*0.01
}

// 掉落装备的部位池，下标即 GearSlot
var dropSlots = []struct {
	slot gamemodel.GearSlot
	name string
}{
	{gamemodel.SlotWeapon, "Sword"},
	{gamemodel.SlotHelmet, "Helm"},
	{gamemodel.SlotChest, "Chestplate"},
	{gamemodel.SlotLegs, "Greaves"},
	{gamemodel.SlotGloves, "Gauntlets"},
	{gamemodel.SlotBoots, "Boots"},
	{gamemodel.SlotRing, "Ring"},
	{gamemodel.SlotAmulet, "Amulet"},
}

var rarityPrefixes = map[gamemodel.Rarity][]string{
	gamemodel.RarityCommon:    {"Worn", "Simple", "Basic"},
	gamemodel.RarityUncommon:  {"Sturdy", "Refined", "Quality"},
	gamemodel.RarityRare:      {"Superior", "Exceptional", "Pristine"},
	gamemodel.RarityEpic:      {"Heroic", "Valiant", "Glorious"},
	gamemodel.RarityLegendary: {"Legendary", "Mythical", "Divine"},
}

var bonusStatTypes = []string{
	"strength", "agility", "intelligence", "vitality", "luck",
	"critical_chance", "critical_damage", "dodge_chance",
}

// RollDrop 按概率掉落一件装备，未掉落时返回 false
func RollDrop(rng *rand.Rand, chapter int, chance float64) (gamemodel.Item, bool) {
	if rng.Float64() > chance {
		return gamemodel.Item{}, false
	}

	rarity := rollRarity(rng, chapter)
	pick := dropSlots[rng.Intn(len(dropSlots))]

	base := 5 + chapter*2 + int(rarity)*3
	atk := base / 3
	if pick.slot == gamemodel.SlotWeapon || pick.slot == gamemodel.SlotRing {
		atk = base
	}
	def := 0
	switch pick.slot {
	case gamemodel.SlotHelmet, gamemodel.SlotChest, gamemodel.SlotLegs, gamemodel.SlotGloves, gamemodel.SlotBoots:
		def = base / 2
	}

	name := itemName(rng, pick.name, rarity)
	gear := &gamemodel.GearData{
		Slot:       pick.slot,
		Atk:        atk,
		Def:        def,
		BonusStats: []gamemodel.BonusStat{},
	}
	if rarity >= gamemodel.RarityRare {
		gear.BonusStats = rollBonusStats(rng, rarity)
	}

	return gamemodel.Item{
		ItemType: gamemodel.ItemGear,
		ID:       itemID(rng),
		Name:     name,
		Rarity:   rarity,
		GearData: gear,
	}, true
}

// StageDrops 首领关先必掉一件，然后每只怪物各掷一次
func StageDrops(rng *rand.Rand, chapter, stage int, mobs []gamemodel.MonsterConfig) []gamemodel.Item {
	items := []gamemodel.Item{}
	if stage == 10 {
		if item, ok := RollDrop(rng, chapter, 1.0); ok {
			items = append(items, item)
		}
	}
	for _, mob := range mobs {
		if item, ok := RollDrop(rng, chapter, mob.DropChance); ok {
			items = append(items, item)
		}
	}
	return items
}

// rollRarity 章节越高，稀有度阈值越低
func rollRarity(rng *rand.Rand, chapter int) gamemodel.Rarity {
	roll := rng.Float64()
	ch := float64(chapter)
	switch {
	case roll > 0.98-ch*0.005:
		return gamemodel.RarityLegendary
	case roll > 0.9-ch*0.01:
		return gamemodel.RarityEpic
	case roll > 0.7-ch*0.02:
		return gamemodel.RarityRare
	case roll > 0.4:
		return gamemodel.RarityUncommon
	default:
		return gamemodel.RarityCommon
	}
}

func itemName(rng *rand.Rand, base string, rarity gamemodel.Rarity) string {
	prefixes, ok := rarityPrefixes[rarity]
	if !ok {
		return "Unknown " + base
	}
	return prefixes[rng.Intn(len(prefixes))] + " " + base
}

// rollBonusStats 稀有 1 条、史诗 2 条、传说 3 条，最多 4 条，不重复
func rollBonusStats(rng *rand.Rand, rarity gamemodel.Rarity) []gamemodel.BonusStat {
	n := min(int(rarity)-1, 4)
	r := float64(rarity)

	stats := make([]gamemodel.BonusStat, 0, n)
	for _, idx := range rng.Perm(len(bonusStatTypes))[:n] {
		stat := bonusStatTypes[idx]
		var value float64
		switch stat {
		case "critical_chance", "dodge_chance":
			value = roundTo(uniform(rng, 0.01, 0.05)*r, 3)
		case "critical_damage":
			value = roundTo(uniform(rng, 0.1, 0.3)*r, 2)
		default:
			value = float64((rng.Intn(5) + 1) * int(rarity))
		}
		stats = append(stats, gamemodel.BonusStat{StatType: stat, Value: value})
	}
	return stats
}

// itemID 从同一随机源派生，保证同一种子生成的掉落完全一致
func itemID(rng *rand.Rand) string {
	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
