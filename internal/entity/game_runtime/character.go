package game_runtime

import (
	"fmt"
	"time"

	"github.com/aarondl/null/v8"

	"rpg-backend/internal/model/gamemodel"
)

// Character game_runtime.characters 表
//
// 结构化字段以 JSONB 存储，读写统一经过 Profile/SetProfile。
type Character struct {
	ID             string    `boil:"id" json:"id"`
	UserID         string    `boil:"user_id" json:"user_id"`
	Name           string    `boil:"name" json:"name"`
	CharacterClass int       `boil:"character_class" json:"character_class"`
	Level          int       `boil:"level" json:"level"`
	Experience     int64     `boil:"experience" json:"experience"`
	Gold           int64     `boil:"gold" json:"gold"`
	Gems           int64     `boil:"gems" json:"gems"`
	Power          int64     `boil:"power" json:"power"`
	FreeStatPoints int       `boil:"free_stat_points" json:"free_stat_points"`
	Stats          null.JSON `boil:"stats" json:"stats"`
	Inventory      null.JSON `boil:"inventory" json:"inventory"`
	Equipped       null.JSON `boil:"equipped" json:"equipped"`
	Potions        null.JSON `boil:"potions" json:"potions"`
	Skills         null.JSON `boil:"skills" json:"skills"`
	Progression    null.JSON `boil:"progression" json:"progression"`
	Shop           null.JSON `boil:"shop" json:"shop"`
	CreatedAt      time.Time `boil:"created_at" json:"created_at"`
	UpdatedAt      time.Time `boil:"updated_at" json:"updated_at"`
}

// Profile 角色 JSONB 字段的类型化视图
type Profile struct {
	Stats       gamemodel.CharacterStats
	Inventory   gamemodel.Inventory
	Equipped    gamemodel.Equipped
	Potions     gamemodel.Potions
	Skills      gamemodel.Skills
	Progression gamemodel.Progression
	Shop        gamemodel.Shop
}

// DefaultProfile 新角色的初始数据
func DefaultProfile(inventorySlots int) Profile {
	return Profile{
		Stats:       gamemodel.DefaultStats(),
		Inventory:   gamemodel.DefaultInventory(inventorySlots),
		Equipped:    gamemodel.DefaultEquipped(),
		Potions:     gamemodel.DefaultPotions(),
		Skills:      gamemodel.DefaultSkills(),
		Progression: gamemodel.DefaultProgression(),
		Shop:        gamemodel.DefaultShop(),
	}
}

// Profile 解析全部 JSONB 字段；字段为空时使用默认值
func (c *Character) Profile(inventorySlots int) (Profile, error) {
	p := DefaultProfile(inventorySlots)
	blocks := []struct {
		name string
		raw  null.JSON
		dest any
	}{
		{"stats", c.Stats, &p.Stats},
		{"inventory", c.Inventory, &p.Inventory},
		{"equipped", c.Equipped, &p.Equipped},
		{"potions", c.Potions, &p.Potions},
		{"skills", c.Skills, &p.Skills},
		{"progression", c.Progression, &p.Progression},
		{"shop", c.Shop, &p.Shop},
	}
	for _, b := range blocks {
		if !b.raw.Valid || len(b.raw.JSON) == 0 {
			continue
		}
		if err := b.raw.Unmarshal(b.dest); err != nil {
			return p, fmt.Errorf("解析角色字段 %s 失败: %w", b.name, err)
		}
	}
	if p.Progression.Chapters.CompletedStages == nil {
		p.Progression.Chapters.CompletedStages = []string{}
	}
	return p, nil
}

// SetProfile 序列化全部 JSONB 字段
func (c *Character) SetProfile(p Profile) error {
	blocks := []struct {
		name string
		dest *null.JSON
		src  any
	}{
		{"stats", &c.Stats, p.Stats},
		{"inventory", &c.Inventory, p.Inventory},
		{"equipped", &c.Equipped, p.Equipped},
		{"potions", &c.Potions, p.Potions},
		{"skills", &c.Skills, p.Skills},
		{"progression", &c.Progression, p.Progression},
		{"shop", &c.Shop, p.Shop},
	}
	for _, b := range blocks {
		if err := b.dest.Marshal(b.src); err != nil {
			return fmt.Errorf("序列化角色字段 %s 失败: %w", b.name, err)
		}
	}
	return nil
}
