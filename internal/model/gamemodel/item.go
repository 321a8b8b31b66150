package gamemodel

// ItemType 物品大类
type ItemType int

const (
	ItemGear ItemType = iota
	ItemConsumable
	ItemUpgradeGem
	ItemRefineGem
	ItemEvent
)

// GearSlot 装备部位
type GearSlot int

const (
	SlotWeapon GearSlot = iota
	SlotHelmet
	SlotChest
	SlotLegs
	SlotGloves
	SlotBoots
	SlotRing
	SlotAmulet
	SlotBracelet
	SlotWings
)

// Rarity 品质
type Rarity int

const (
	RarityCommon Rarity = iota
	RarityUncommon
	RarityRare
	RarityEpic
	RarityLegendary
	RarityMythic
)

var rarityNames = [...]string{"common", "uncommon", "rare", "epic", "legendary", "mythic"}

func (r Rarity) String() string {
	if r < 0 || int(r) >= len(rarityNames) {
		return "unknown"
	}
	return rarityNames[r]
}

// BonusStat 装备附加属性
type BonusStat struct {
	StatType string  `json:"stat_type" example:"critical_chance"`
	Value    float64 `json:"value" example:"0.06"`
}

// GearData 装备专属字段
type GearData struct {
	Slot         GearSlot    `json:"slot"`
	Atk          int         `json:"atk"`
	Def          int         `json:"def"`
	BonusStats   []BonusStat `json:"bonus_stats"`
	UpgradeLevel int         `json:"upgrade_level"`
	RefineLevel  int         `json:"refine_level"`
}

// ConsumableData 消耗品专属字段
type ConsumableData struct {
	ConsumableType string `json:"consumable_type"`
	EffectValue    int    `json:"effect_value"`
}

// GemData 强化/精炼宝石专属字段
type GemData struct {
	GemTier int `json:"gem_tier"`
}

// EventData 活动道具专属字段
type EventData struct {
	EventID string `json:"event_id"`
}

// Item 按 item_type 区分的物品，只有对应类型的专属字段非空
type Item struct {
	ItemType  ItemType `json:"item_type"`
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Rarity    Rarity   `json:"rarity"`
	StackSize int      `json:"stack_size,omitempty"`

	*GearData
	*ConsumableData
	*GemData
	*EventData
}

// IsGear 是否为装备
func (i Item) IsGear() bool {
	return i.ItemType == ItemGear && i.GearData != nil
}
